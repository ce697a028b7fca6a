package profiles

const (
	// CouchbaseScope is the Couchbase scope in which the profile records are
	// stored
	CouchbaseScope = "app"

	// CouchbaseCollection is the Couchbase collection in which the profile
	// records are stored
	CouchbaseCollection = "profiles"

	// MaxMonthlyTweets is the ceiling on tweets a profile may post in a
	// month. The counter is reset outside of this service.
	MaxMonthlyTweets = 500
)

// Record represents a user profile joining local app data with the linked
// twitter account
type Record struct {
	// ID of the profile record
	ID string `json:"id"`

	// Username is the display name of the user within the app
	Username string `json:"username"`

	Bio string `json:"bio"`

	Website string `json:"website"`

	Location string `json:"location"`

	// TwitterUsername is the screen name of the linked twitter account. May
	// be empty when the user has not linked an account.
	TwitterUsername string `json:"twitterUsername"`

	// TwitterPostCount is the number of tweets posted through this service
	// in the current month
	TwitterPostCount int `json:"twitterPostCount"`

	// LastTweetAt is the RFC3339 time of the most recent tweet posted
	// through this service
	LastTweetAt string `json:"lastTweetAt"`

	// LastTweetID is the id of the most recent tweet posted through this
	// service
	LastTweetID string `json:"lastTweetId"`
}

func FullyQualifiedCollectionName(bucket string) string {
	return "`" + bucket + "`" + "." + CouchbaseScope + "." + CouchbaseCollection
}
