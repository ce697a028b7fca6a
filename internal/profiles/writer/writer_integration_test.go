//go:build integration
// +build integration

package writer

import (
	"os"
	"testing"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tweet-relay/internal/profiles"
	"tweet-relay/internal/profiles/reader"
)

// requires a reachable cluster with the app.profiles collection; run with
// COUCHBASE_ENDPOINT, COUCHBASE_USERNAME, COUCHBASE_PASSWORD, and
// COUCHBASE_BUCKET set
func Test_Service_RecordTweet_Ceiling(t *testing.T) {
	cluster, err := gocb.Connect(
		"couchbases://"+os.Getenv("COUCHBASE_ENDPOINT"),
		gocb.ClusterOptions{
			Username: os.Getenv("COUCHBASE_USERNAME"),
			Password: os.Getenv("COUCHBASE_PASSWORD"),
		},
	)
	require.NoError(t, err)
	require.NoError(t, cluster.WaitUntilReady(time.Second*5, nil))

	bucket := os.Getenv("COUCHBASE_BUCKET")
	logger := zap.NewNop()

	w, err := NewService(logger, cluster, bucket)
	require.NoError(t, err)

	r, err := reader.NewService(logger, cluster, bucket)
	require.NoError(t, err)

	collection := cluster.Bucket(bucket).
		Scope(profiles.CouchbaseScope).
		Collection(profiles.CouchbaseCollection)

	const id = "integration-ceiling"
	rec := profiles.Record{
		ID:               id,
		Username:         "integration",
		TwitterPostCount: profiles.MaxMonthlyTweets - 1,
	}
	_, err = collection.Upsert(id, rec, nil)
	require.NoError(t, err)
	defer collection.Remove(id, nil)

	// the last slot below the ceiling is granted
	require.NoError(t, w.RecordTweet(id, "tweet-499", time.Now().UTC()))

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, profiles.MaxMonthlyTweets, got.TwitterPostCount)
	assert.Equal(t, "tweet-499", got.LastTweetID)

	// at the ceiling the conditional update mutates nothing
	err = w.RecordTweet(id, "tweet-500", time.Now().UTC())
	assert.ErrorIs(t, err, profiles.ErrCeilingReached)

	got, err = r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, profiles.MaxMonthlyTweets, got.TwitterPostCount)
	assert.Equal(t, "tweet-499", got.LastTweetID)
}
