package writer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchbase/gocb/v2"
	"go.uber.org/zap"

	"tweet-relay/internal/profiles"
)

const (
	cbTimeout = time.Second * 5
)

// Service is responsible for performing write operations on the app.profiles
// collection. We use a separate writer service to avoid commingling read/writes
type Service struct {
	bucket     string
	cluster    *gocb.Cluster
	collection *gocb.Collection
	logger     *zap.Logger
}

func NewService(logger *zap.Logger, cluster *gocb.Cluster, bucket string) (*Service, error) {
	s := Service{
		bucket:  bucket,
		cluster: cluster,
		logger:  logger,
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	if err := s.setCollection(); err != nil {
		return nil, fmt.Errorf("unable to set collection: %w", err)
	}

	return &s, nil
}

func (s *Service) validate() error {
	var missingDeps []string

	for _, tc := range []struct {
		dep string
		chk func() bool
	}{
		{
			dep: "logger",
			chk: func() bool { return s.logger != nil },
		},
		{
			dep: "cluster",
			chk: func() bool { return s.cluster != nil },
		},
		{
			dep: "bucket",
			chk: func() bool { return s.bucket != "" },
		},
	} {
		if !tc.chk() {
			missingDeps = append(missingDeps, tc.dep)
		}
	}

	if len(missingDeps) > 0 {
		return fmt.Errorf(
			"unable to initialize service due to (%d) missing dependencies: %s",
			len(missingDeps),
			strings.Join(missingDeps, ","),
		)
	}

	return nil
}

type Update struct {
	Field string
	Value interface{}
}

// UpdateFields updates specific fields on the profile record matching id
func (s *Service) UpdateFields(id string, updates ...Update) error {
	if len(updates) == 0 {
		return nil
	}

	logger := s.logger.With(zap.String("profileId", id))

	fqn := profiles.FullyQualifiedCollectionName(s.bucket)
	stmt := "UPDATE " + fqn

	namedParams := make(map[string]interface{})
	np := namedParamField(updates[0].Field)
	stmt += " SET " + escapeField(updates[0].Field) + " = " + np
	namedParams[np] = updates[0].Value
	updates = updates[1:]

	for i := range updates {
		np := namedParamField(updates[i].Field)
		stmt += "," + escapeField(updates[i].Field) + " = " + np
		namedParams[np] = updates[i].Value
	}

	stmt += " WHERE `id` = $q_id LIMIT 1"
	namedParams[namedParamField("id")] = id

	logger.Debug(
		"query statement",
		zap.String("statement", stmt),
		zap.Any("params", namedParams),
	)
	opts := gocb.QueryOptions{
		Timeout:         cbTimeout,
		NamedParameters: namedParams,
		ScanConsistency: gocb.QueryScanConsistencyRequestPlus,
	}
	_, err := s.cluster.Query(stmt, &opts)
	if err != nil {
		const msg = "unable to update profile record"
		logger.Error(msg, zap.Error(err))
		return fmt.Errorf(msg+": %w", err)
	}

	logger.Debug("successfully updated profile record")

	return nil
}

// RecordTweet bumps the monthly post count and stamps the last-tweet metadata
// for the profile matching id. The increment is conditional on the count
// still being below profiles.MaxMonthlyTweets so that concurrent posts cannot
// push the counter past the ceiling. A write that mutates nothing returns
// profiles.ErrCeilingReached.
func (s *Service) RecordTweet(id, tweetID string, postedAt time.Time) error {
	logger := s.logger.With(
		zap.String("profileId", id),
		zap.String("tweetId", tweetID),
	)

	fqn := profiles.FullyQualifiedCollectionName(s.bucket)
	stmt := "UPDATE " + fqn +
		" SET `twitterPostCount` = `twitterPostCount` + 1," +
		" `lastTweetAt` = $q_lastTweetAt," +
		" `lastTweetId` = $q_lastTweetId" +
		" WHERE `id` = $q_id" +
		" AND `twitterPostCount` < " + strconv.Itoa(profiles.MaxMonthlyTweets) +
		" LIMIT 1"

	opts := gocb.QueryOptions{
		Timeout: cbTimeout,
		NamedParameters: map[string]interface{}{
			"$q_id":          id,
			"$q_lastTweetAt": postedAt.UTC().Format(time.RFC3339),
			"$q_lastTweetId": tweetID,
		},
		ScanConsistency: gocb.QueryScanConsistencyRequestPlus,
		Metrics:         true,
	}
	res, err := s.cluster.Query(stmt, &opts)
	if err != nil {
		const msg = "unable to record tweet on profile"
		logger.Error(msg, zap.Error(err))
		return fmt.Errorf(msg+": %w", err)
	}

	for res.Next() {
	}
	if err := res.Err(); err != nil {
		const msg = "unable to drain record tweet result"
		logger.Error(msg, zap.Error(err))
		return fmt.Errorf(msg+": %w", err)
	}

	md, err := res.MetaData()
	if err != nil {
		const msg = "unable to read record tweet metadata"
		logger.Error(msg, zap.Error(err))
		return fmt.Errorf(msg+": %w", err)
	}

	if md.Metrics.MutationCount == 0 {
		logger.Error("tweet posted but count update mutated nothing")
		return profiles.ErrCeilingReached
	}

	logger.Debug("successfully recorded tweet on profile")

	return nil
}

func (s *Service) setCollection() error {
	bucket := s.cluster.Bucket(s.bucket)
	if err := bucket.WaitUntilReady(cbTimeout, nil); err != nil {
		return fmt.Errorf("unable to wait for bucket to be ready: %w", err)
	}

	s.collection = bucket.Scope(profiles.CouchbaseScope).Collection(profiles.CouchbaseCollection)

	return nil
}

func escapeField(field string) string {
	return "`" + strings.Replace(field, ".", "`.`", -1) + "`"
}

func namedParamField(field string) string {
	return "$q_" + strings.Replace(field, ".", "_", -1)
}
