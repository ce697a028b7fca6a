package profiles

type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrNotFound is returned when no profile record matches the given id
	ErrNotFound Error = "profile record not found"

	// ErrAmbiguous is returned when a single-row fetch matches more than one
	// record
	ErrAmbiguous Error = "more than one profile record matched"

	// ErrCeilingReached is returned when a conditional post-count update
	// mutates nothing because the record is already at MaxMonthlyTweets
	ErrCeilingReached Error = "monthly tweet ceiling reached"
)
