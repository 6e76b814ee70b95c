package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

// blobSuffix marks a sibling key holding the raw bytes of a binary content
// record, next to its JSON record under the bare URL key.
const blobSuffix = "^bytes"

const recordsBucket = "records"

// maxWriteAttempts bounds how many times a single write is attempted, the
// first try included, against a write failure (e.g. a full disk) before the
// Store gives up and returns a fatal error. bbolt grows its backing file automatically on demand;
// this cap only keeps a persistently failing disk from turning into an
// infinite retry loop.
const maxWriteAttempts = 12

// Store is a single-file, transactional, URL-keyed Document Store backed
// by bbolt.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bbolt file at path and ensures the
// records bucket exists.
func Open(path string) (*Store, failure.ClassifiedError) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, &StoreError{Message: fmt.Sprintf("open %s: %v", path, err), Cause: ErrCauseOpenFailed, Retryable: false}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, &StoreError{Message: fmt.Sprintf("create bucket: %v", err), Cause: ErrCauseOpenFailed, Retryable: false}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// withWriteRetry runs fn in a bbolt update transaction, making at most
// maxWriteAttempts attempts before surfacing a fatal StoreError. A closed
// database is not retried.
func (s *Store) withWriteRetry(fn func(tx *bolt.Tx) error) failure.ClassifiedError {
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		attempts = attempt
		lastErr = s.db.Update(fn)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, bolt.ErrDatabaseNotOpen) {
			break
		}
	}
	return &StoreError{
		Message:   fmt.Sprintf("write failed after %d attempts: %v", attempts, lastErr),
		Cause:     ErrCauseDiskFull,
		Retryable: false,
	}
}

func isBlobKey(key string) bool {
	return strings.HasSuffix(key, blobSuffix)
}

func blobKey(key string) string {
	return key + blobSuffix
}

func encodeRecord(r Record) ([]byte, error) {
	return json.Marshal(r)
}

func decodeRecord(data []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(data, &r)
	return r, err
}
