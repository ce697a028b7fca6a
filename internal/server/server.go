package server

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tweet-relay/internal/profiles"
	"tweet-relay/internal/profiles/writer"
	"tweet-relay/internal/twitter"
)

// ProfileReader reads profile records from the datastore
type ProfileReader interface {
	Get(id string) (*profiles.Record, error)
}

// ProfileWriter writes profile records to the datastore
type ProfileWriter interface {
	UpdateFields(id string, updates ...writer.Update) error
	RecordTweet(id, tweetID string, postedAt time.Time) error
}

// TweetService posts and reads tweets through the twitter api
type TweetService interface {
	CreateTweet(text string) (string, error)
	AccountID(username string) (string, error)
	RecentTweets(accountID string, limit int) ([]twitter.Tweet, error)
}

// Handler holds the dependencies shared by the relay's http handlers. All
// shared state lives in the external collaborators; the handlers themselves
// are stateless.
type Handler struct {
	logger        *zap.Logger
	reader        ProfileReader
	writer        ProfileWriter
	tweets        TweetService
	allowedOrigin string
}

func New(logger *zap.Logger, r ProfileReader, w ProfileWriter, tweets TweetService, allowedOrigin string) (*Handler, error) {
	h := Handler{
		logger:        logger,
		reader:        r,
		writer:        w,
		tweets:        tweets,
		allowedOrigin: allowedOrigin,
	}

	if err := h.validate(); err != nil {
		return nil, err
	}

	h.logger.Debug("successfully initialized http handler")

	return &h, nil
}

func (h *Handler) validate() error {
	var missingDeps []string

	for _, tc := range []struct {
		dep string
		chk func() bool
	}{
		{
			dep: "logger",
			chk: func() bool { return h.logger != nil },
		},
		{
			dep: "reader",
			chk: func() bool { return h.reader != nil },
		},
		{
			dep: "writer",
			chk: func() bool { return h.writer != nil },
		},
		{
			dep: "tweets",
			chk: func() bool { return h.tweets != nil },
		},
		{
			dep: "allowedOrigin",
			chk: func() bool { return h.allowedOrigin != "" },
		},
	} {
		if !tc.chk() {
			missingDeps = append(missingDeps, tc.dep)
		}
	}

	if len(missingDeps) > 0 {
		return fmt.Errorf(
			"unable to initialize handler due to (%d) missing dependencies: %s",
			len(missingDeps),
			strings.Join(missingDeps, ","),
		)
	}

	return nil
}
