// Package history persists migration statuses and shadow-mode reports so
// planning, execution, and audits can happen across separate invocations.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

var (
	bucketMigrations = []byte("migrations")
	bucketReports    = []byte("shadow_reports")
)

// ErrNotFound is returned when the requested ID has no stored entry.
var ErrNotFound = fmt.Errorf("history: not found")

// Store is the persistence surface for migration and shadow history.
type Store interface {
	SaveStatus(id string, status domain.MigrationStatus) error
	GetStatus(id string) (domain.MigrationStatus, error)
	ListStatusIDs() ([]string, error)
	SaveReport(id string, report domain.ShadowReport) error
	GetReport(id string) (domain.ShadowReport, error)
	ListReportIDs() ([]string, error)
	Close() error
}

// NewID builds a sortable timestamped key, e.g. "20260301_100000".
func NewID(at time.Time) string {
	return at.UTC().Format("20060102_150405")
}

type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMigrations); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketReports); err != nil {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) SaveStatus(id string, status domain.MigrationStatus) error {
	return s.put(bucketMigrations, id, status)
}

func (s *boltStore) GetStatus(id string) (domain.MigrationStatus, error) {
	var status domain.MigrationStatus
	err := s.get(bucketMigrations, id, &status)
	return status, err
}

func (s *boltStore) ListStatusIDs() ([]string, error) {
	return s.keys(bucketMigrations)
}

func (s *boltStore) SaveReport(id string, report domain.ShadowReport) error {
	return s.put(bucketReports, id, report)
}

func (s *boltStore) GetReport(id string) (domain.ShadowReport, error) {
	var report domain.ShadowReport
	err := s.get(bucketReports, id, &report)
	return report, err
}

func (s *boltStore) ListReportIDs() ([]string, error) {
	return s.keys(bucketReports)
}

func (s *boltStore) put(bucket []byte, id string, value any) error {
	if id == "" {
		return fmt.Errorf("history: empty id")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("history: encoding %s: %w", id, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(id), data)
	})
}

func (s *boltStore) get(bucket []byte, id string, out any) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(v, out)
	})
}

// keys returns IDs in key order; timestamped IDs come back chronologically.
func (s *boltStore) keys(bucket []byte) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}
