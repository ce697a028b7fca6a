package reader

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchbase/gocb/v2"
	"go.uber.org/zap"

	"tweet-relay/internal/profiles"
)

const (
	cbTimeout = time.Second * 3
)

// Service is responsible for performing read operations on the app.profiles
// collection. We use a separate reader service to avoid commingling read/writes
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

// Get fetches the single profile record matching the given id. A fetch that
// matches no record returns profiles.ErrNotFound; a fetch that matches more
// than one returns profiles.ErrAmbiguous.
func (s *Service) Get(id string) (*profiles.Record, error) {
	logger := s.logger.With(zap.String("profileId", id))

	fqn := profiles.FullyQualifiedCollectionName(s.bucket)
	stmt := "SELECT p.* FROM " + fqn + " p WHERE p.`id` = " + namedParamField("id") + " LIMIT 2"

	options := gocb.QueryOptions{
		ScanConsistency: gocb.QueryScanConsistencyRequestPlus,
		Timeout:         cbTimeout,
		NamedParameters: map[string]interface{}{
			namedParamField("id"): id,
		},
	}

	res, err := s.cluster.Query(stmt, &options)
	if err != nil {
		const msg = "unable to query collection"
		logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	records, err := collectRows(logger, res)
	if err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, profiles.ErrNotFound
	case 1:
		return &records[0], nil
	default:
		logger.Error("single-row fetch matched multiple records")
		return nil, profiles.ErrAmbiguous
	}
}

func (s *Service) setCollection() error {
	bucket := s.cluster.Bucket(s.bucket)
	if err := bucket.WaitUntilReady(cbTimeout, nil); err != nil {
		return fmt.Errorf("unable to wait for bucket to be ready: %w", err)
	}

	s.collection = bucket.Scope(profiles.CouchbaseScope).Collection(profiles.CouchbaseCollection)

	return nil
}

// queryRows is the slice of gocb's query result the drain needs
type queryRows interface {
	Next() bool
	Row(valuePtr interface{}) error
	Err() error
}

// collectRows drains the query result into records. A streaming failure
// mid-drain surfaces as an error rather than as a short row set, so a
// failed query is never mistaken for zero matches.
func collectRows(logger *zap.Logger, res queryRows) ([]profiles.Record, error) {
	var records []profiles.Record
	for res.Next() {
		var rec profiles.Record
		if err := res.Row(&rec); err != nil {
			const msg = "unable to unmarshal record"
			logger.Error(msg, zap.Error(err))
			return nil, fmt.Errorf(msg+": %w", err)
		}
		records = append(records, rec)
	}

	if err := res.Err(); err != nil {
		const msg = "unable to drain query result"
		logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	return records, nil
}

func namedParamField(field string) string {
	return "$q_" + strings.Replace(field, ".", "_", -1)
}
