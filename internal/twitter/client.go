package twitter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	gotwitter "github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"
	"go.uber.org/zap"
)

const (
	httpTimeout = time.Second * 10

	defaultTimelineLimit = 10
	maxTimelineLimit     = 100
)

// Client is responsible for interacting with the twitter api on behalf of
// the relay: posting tweets, resolving screen names to account ids, and
// listing an account's recent tweets.
type Client struct {
	logger *zap.Logger
	api    *gotwitter.Client
	http   *http.Client

	// createURL is the tweet creation endpoint, overridable in tests
	createURL string
}

// NewClient returns an instantiated twitter client. All requests are signed
// with the given oauth1 credentials.
func NewClient(logger *zap.Logger, creds Credentials) (*Client, error) {
	c := Client{
		logger:    logger,
		createURL: TweetAPIURL,
	}

	if err := c.validate(creds); err != nil {
		return nil, err
	}

	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)

	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = httpTimeout

	c.http = httpClient
	c.api = gotwitter.NewClient(httpClient)

	logger.Debug("successfully initialized twitter client")

	return &c, nil
}

func (c *Client) validate(creds Credentials) error {
	var missingDeps []string

	for _, tc := range []struct {
		dep string
		chk func() bool
	}{
		{
			dep: "logger",
			chk: func() bool { return c.logger != nil },
		},
		{
			dep: "consumer key",
			chk: func() bool { return creds.ConsumerKey != "" },
		},
		{
			dep: "consumer secret",
			chk: func() bool { return creds.ConsumerSecret != "" },
		},
		{
			dep: "access token",
			chk: func() bool { return creds.AccessToken != "" },
		},
		{
			dep: "access token secret",
			chk: func() bool { return creds.AccessTokenSecret != "" },
		},
	} {
		if !tc.chk() {
			missingDeps = append(missingDeps, tc.dep)
		}
	}

	if len(missingDeps) > 0 {
		return fmt.Errorf(
			"unable to initialize twitter client due to (%d) missing dependencies: %s",
			len(missingDeps),
			strings.Join(missingDeps, ","),
		)
	}

	return nil
}

// CreateTweet posts a tweet with the given text and returns the id of the
// new tweet.
func (c *Client) CreateTweet(text string) (string, error) {
	payload := createTweetPayload{Text: text}

	body, err := json.Marshal(payload)
	if err != nil {
		const msg = "unable to marshal tweet body"
		c.logger.Error(msg, zap.Error(err))
		return "", fmt.Errorf(msg+": %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.createURL, bytes.NewReader(body))
	if err != nil {
		const msg = "unable to create request"
		c.logger.Error(msg, zap.Error(err))
		return "", fmt.Errorf(msg+": %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		const msg = "unable to post tweet"
		c.logger.Error(msg, zap.Error(err))
		return "", fmt.Errorf(msg+": %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.Body != nil {
			b, err := ioutil.ReadAll(resp.Body)
			if err == nil {
				c.logger.Error("tweet creation response body", zap.String("body", string(b)))
			}
		}
		const msg = "received non 200 response posting tweet"
		c.logger.Error(msg, zap.Int("statusCode", resp.StatusCode))
		return "", fmt.Errorf(msg+": %d", resp.StatusCode)
	}

	var tr createTweetResp
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		const msg = "unable to decode tweet response"
		c.logger.Error(msg, zap.Error(err))
		return "", fmt.Errorf(msg+": %w", err)
	}

	if tr.TweetData.ID == "" {
		const msg = "tweet response missing id"
		c.logger.Error(msg)
		return "", errors.New(msg)
	}

	return tr.TweetData.ID, nil
}

// AccountID resolves a twitter screen name to the account id. A screen name
// that does not resolve returns ErrAccountNotFound.
func (c *Client) AccountID(username string) (string, error) {
	logger := c.logger.With(zap.String("twitterUsername", username))

	user, _, err := c.api.Users.Show(&gotwitter.UserShowParams{
		ScreenName: username,
	})
	if err != nil {
		if isAccountNotFound(err) {
			logger.Debug("no twitter account for screen name")
			return "", ErrAccountNotFound
		}
		const msg = "unable to look up twitter account"
		logger.Error(msg, zap.Error(err))
		return "", fmt.Errorf(msg+": %w", err)
	}

	if user == nil || user.IDStr == "" {
		logger.Debug("no twitter account for screen name")
		return "", ErrAccountNotFound
	}

	return user.IDStr, nil
}

// RecentTweets fetches up to limit of the account's most recent tweets with
// their engagement metrics. A limit of 0 defaults to 10; limits are capped
// at the timeline api maximum of 100.
func (c *Client) RecentTweets(accountID string, limit int) ([]Tweet, error) {
	logger := c.logger.With(zap.String("accountId", accountID))

	id, err := strconv.ParseInt(accountID, 10, 64)
	if err != nil {
		const msg = "unable to parse account id"
		logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	if limit == 0 {
		limit = defaultTimelineLimit
	}
	limit = max(min(limit, maxTimelineLimit), 1)

	timeline, _, err := c.api.Timelines.UserTimeline(&gotwitter.UserTimelineParams{
		UserID:   id,
		Count:    limit,
		TrimUser: gotwitter.Bool(true),
	})
	if err != nil {
		const msg = "unable to fetch user timeline"
		logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	logger.Debug("fetched timeline", zap.Int("numTweets", len(timeline)))

	return fromTimeline(timeline), nil
}

func fromTimeline(timeline []gotwitter.Tweet) []Tweet {
	tweets := make([]Tweet, 0, len(timeline))
	for i := range timeline {
		// the v1.1 api serves ruby-style timestamps; a tweet with an
		// unparseable one keeps a zero created_at rather than being dropped
		createdAt, _ := timeline[i].CreatedAtTime()

		text := timeline[i].FullText
		if text == "" {
			text = timeline[i].Text
		}

		tweets = append(tweets, Tweet{
			ID:        timeline[i].IDStr,
			Text:      text,
			CreatedAt: createdAt.UTC(),
			Likes:     timeline[i].FavoriteCount,
			Retweets:  timeline[i].RetweetCount,
			URL:       StatusURL(timeline[i].IDStr),
		})
	}

	return tweets
}

func isAccountNotFound(err error) bool {
	var apiErr gotwitter.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	// 17: no user matches, 50: user not found, 63: user suspended
	for i := range apiErr.Errors {
		switch apiErr.Errors[i].Code {
		case 17, 50, 63:
			return true
		}
	}

	return false
}

func max(i, j int) int {
	if i > j {
		return i
	}

	return j
}

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}
