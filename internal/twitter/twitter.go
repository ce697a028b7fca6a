package twitter

import "time"

const (
	// TweetAPIURL is the url of the v2 tweet creation resource
	TweetAPIURL = "https://api.twitter.com/2/tweets"

	// StatusURLPrefix is the public permalink prefix for a tweet. Appending
	// a tweet id yields the canonical tweet url.
	StatusURLPrefix = "https://twitter.com/i/web/status/"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrAccountNotFound is returned when a screen name does not resolve to
	// a twitter account
	ErrAccountNotFound Error = "twitter account not found"
)

// Credentials stores all of our access/consumer tokens and secret keys
// needed for authentication against the twitter REST API.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Tweet is a single tweet with its engagement metrics, as returned to
// relay callers
type Tweet struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
	Retweets  int       `json:"retweets"`
	URL       string    `json:"url"`
}

// StatusURL returns the public permalink of the tweet with the given id
func StatusURL(id string) string {
	return StatusURLPrefix + id
}

type createTweetPayload struct {
	Text string `json:"text"`
}

type createTweetResp struct {
	TweetData createTweetData `json:"data"`
}

type createTweetData struct {
	ID string `json:"id"`
}
