package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tweet-relay/internal/profiles"
	"tweet-relay/internal/twitter"
)

const defaultTweetListLimit = 10

type tweetCreateRequest struct {
	Content string `json:"content"`
}

type tweetCreateResponse struct {
	Success  bool   `json:"success"`
	NewCount int    `json:"new_count"`
	TweetID  string `json:"tweet_id"`
	TweetURL string `json:"tweet_url"`
}

// tweetListResponse is the PartialFailure shape of the tweet listing
// endpoint: twitter failures are reported as a 200 with an empty list and an
// error string instead of an error status, so the frontend always receives
// best-effort data.
type tweetListResponse struct {
	Tweets []twitter.Tweet `json:"tweets"`
	Error  string          `json:"error,omitempty"`
}

// CreateTweet posts the given content to twitter on behalf of the profile
// matching user_id, then bumps the profile's monthly post count and
// last-tweet metadata. A profile at the monthly ceiling is rejected with 429
// before twitter is ever called.
func CreateTweet(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "user_id")
		logger := h.logger.With(zap.String("profileId", id))

		var req tweetCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("unable to decode tweet body", zap.Error(err))
			respondDetail(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		if req.Content == "" {
			respondDetail(h.logger, w, http.StatusBadRequest, "tweet content is required")
			return
		}

		rec, err := h.reader.Get(id)
		if err != nil {
			logger.Error("unable to fetch profile for tweet", zap.Error(err))
			respondDetail(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		if rec.TwitterPostCount >= profiles.MaxMonthlyTweets {
			logger.Debug("monthly tweet limit reached", zap.Int("count", rec.TwitterPostCount))
			respondDetail(h.logger, w, http.StatusTooManyRequests, "Monthly tweet limit reached")
			return
		}

		tweetID, err := h.tweets.CreateTweet(req.Content)
		if err != nil {
			logger.Error("unable to post tweet", zap.Error(err))
			respondDetail(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		logger = logger.With(zap.String("tweetId", tweetID))

		// the tweet is live at this point; a failed count update leaves the
		// counter behind the real total
		if err := h.writer.RecordTweet(id, tweetID, time.Now().UTC()); err != nil {
			logger.Error("tweet posted but count update failed", zap.Error(err))
			respondDetail(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		logger.Debug("successfully posted tweet", zap.Int("newCount", rec.TwitterPostCount+1))

		respondJSON(h.logger, w, http.StatusOK, tweetCreateResponse{
			Success:  true,
			NewCount: rec.TwitterPostCount + 1,
			TweetID:  tweetID,
			TweetURL: twitter.StatusURL(tweetID),
		})
	}
}

// ListTweets returns the recent tweets of the twitter account linked to the
// profile matching user_id. A profile without a linked account yields an
// empty list, and twitter failures degrade to an empty list with an error
// string rather than an error status.
func ListTweets(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "user_id")
		logger := h.logger.With(zap.String("profileId", id))

		limit := defaultTweetListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		rec, err := h.reader.Get(id)
		switch {
		case err == nil:
		case errors.Is(err, profiles.ErrNotFound):
			logger.Debug("no profile found for tweet listing")
			respondJSON(h.logger, w, http.StatusOK, emptyTweetList())
			return
		default:
			logger.Error("unable to fetch profile for tweet listing", zap.Error(err))
			respondDetail(h.logger, w, http.StatusInternalServerError, err.Error())
			return
		}

		if rec.TwitterUsername == "" {
			logger.Debug("no twitter username on profile")
			respondJSON(h.logger, w, http.StatusOK, emptyTweetList())
			return
		}

		accountID, err := h.tweets.AccountID(rec.TwitterUsername)
		switch {
		case err == nil:
		case errors.Is(err, twitter.ErrAccountNotFound):
			logger.Debug("no twitter account for username", zap.String("twitterUsername", rec.TwitterUsername))
			respondJSON(h.logger, w, http.StatusOK, emptyTweetList())
			return
		default:
			logger.Error("twitter account lookup failed", zap.Error(err))
			respondJSON(h.logger, w, http.StatusOK, tweetListResponse{
				Tweets: []twitter.Tweet{},
				Error:  err.Error(),
			})
			return
		}

		tweets, err := h.tweets.RecentTweets(accountID, limit)
		if err != nil {
			logger.Error("unable to fetch recent tweets", zap.Error(err))
			respondJSON(h.logger, w, http.StatusOK, tweetListResponse{
				Tweets: []twitter.Tweet{},
				Error:  err.Error(),
			})
			return
		}

		if tweets == nil {
			tweets = []twitter.Tweet{}
		}

		respondJSON(h.logger, w, http.StatusOK, tweetListResponse{Tweets: tweets})
	}
}

func emptyTweetList() tweetListResponse {
	return tweetListResponse{Tweets: []twitter.Tweet{}}
}
