package store

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

// PutRecord writes a JSON record under key, replacing any existing record.
// A record that no longer needs a sibling blob (an HTML body overwriting a
// previous binary, say) drops the stale blob in the same transaction, so a
// blob never outlives a record it doesn't belong to.
func (s *Store) PutRecord(key string, r Record) failure.ClassifiedError {
	encoded, err := encodeRecord(r)
	if err != nil {
		return &StoreError{Message: fmt.Sprintf("encode record: %v", err), Cause: ErrCauseWriteFailed, Retryable: false}
	}
	return s.withWriteRetry(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(recordsBucket))
		if !r.HasContentBlob() {
			if err := bucket.Delete([]byte(blobKey(key))); err != nil {
				return err
			}
		}
		return bucket.Put([]byte(key), encoded)
	})
}

// PutHTML writes an HTML content record: the raw body goes into _content and
// no blob is written.
func (s *Store) PutHTML(key, htmlBody string, r Record) failure.ClassifiedError {
	r.Type = RecordTypeContent
	r.Content = htmlBody
	return s.PutRecord(key, r)
}

// PutBlob writes a binary content record and its raw bytes in one
// transaction: the JSON record under key (with the "N/A" content
// placeholder) and the bytes under key^bytes.
func (s *Store) PutBlob(key string, data []byte, r Record) failure.ClassifiedError {
	r.Type = RecordTypeContent
	r.Content = BinaryContentPlaceholder
	encoded, err := encodeRecord(r)
	if err != nil {
		return &StoreError{Message: fmt.Sprintf("encode record: %v", err), Cause: ErrCauseWriteFailed, Retryable: false}
	}
	return s.withWriteRetry(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(recordsBucket))
		if err := bucket.Put([]byte(key), encoded); err != nil {
			return err
		}
		return bucket.Put([]byte(blobKey(key)), data)
	})
}

// GetRecord reads the JSON record under key. The second return is false if
// no record exists under that key.
func (s *Store) GetRecord(key string) (Record, bool, failure.ClassifiedError) {
	var record Record
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(recordsBucket)).Get([]byte(key))
		if data == nil {
			return nil
		}
		decoded, decodeErr := decodeRecord(data)
		if decodeErr != nil {
			return decodeErr
		}
		record = decoded
		found = true
		return nil
	})
	if err != nil {
		return Record{}, false, &StoreError{Message: fmt.Sprintf("get record %s: %v", key, err), Cause: ErrCauseReadFailed, Retryable: false}
	}
	return record, found, nil
}

// GetBlob reads the raw bytes under key^bytes, if present.
func (s *Store) GetBlob(key string) ([]byte, bool, failure.ClassifiedError) {
	var data []byte
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(recordsBucket)).Get([]byte(blobKey(key)))
		if raw == nil {
			return nil
		}
		data = append([]byte(nil), raw...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, &StoreError{Message: fmt.Sprintf("get blob %s: %v", key, err), Cause: ErrCauseReadFailed, Retryable: false}
	}
	return data, found, nil
}

// SetField sets one extraction field on the record under key and writes it
// back, failing if no record exists there.
func (s *Store) SetField(key, name string, value any) failure.ClassifiedError {
	record, found, err := s.GetRecord(key)
	if err != nil {
		return err
	}
	if !found {
		return &StoreError{Message: fmt.Sprintf("set field %s: no record at %s", name, key), Cause: ErrCauseNotFound, Retryable: false}
	}
	if record.Fields == nil {
		record.Fields = make(map[string]any)
	}
	record.Fields[name] = value
	return s.PutRecord(key, record)
}

// Contains reports whether a record exists under key, without decoding it.
func (s *Store) Contains(key string) (bool, failure.ClassifiedError) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket([]byte(recordsBucket)).Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return false, &StoreError{Message: fmt.Sprintf("contains %s: %v", key, err), Cause: ErrCauseReadFailed, Retryable: false}
	}
	return found, nil
}

// Delete removes the record and any sibling blob under key.
func (s *Store) Delete(key string) failure.ClassifiedError {
	return s.withWriteRetry(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(recordsBucket))
		if err := bucket.Delete([]byte(key)); err != nil {
			return err
		}
		return bucket.Delete([]byte(blobKey(key)))
	})
}

// Iterate calls fn for every non-blob record key in the store, in bbolt's
// natural (sorted) key order. Iteration stops early if fn returns false.
func (s *Store) Iterate(fn func(key string, r Record) bool) failure.ClassifiedError {
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(recordsBucket)).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			key := string(k)
			if isBlobKey(key) {
				continue
			}
			record, decodeErr := decodeRecord(v)
			if decodeErr != nil {
				continue
			}
			if !fn(key, record) {
				break
			}
		}
		return nil
	})
	if err != nil {
		return &StoreError{Message: fmt.Sprintf("iterate: %v", err), Cause: ErrCauseReadFailed, Retryable: false}
	}
	return nil
}

// FilterByField returns every non-blob key whose record carries the given
// field with the given value, whether the field is a typed base field or an
// extraction-derived entry in the open bag. Matching is done over the
// record's JSON form so callers can filter on any name the document
// actually stores.
func (s *Store) FilterByField(name string, value any) ([]string, failure.ClassifiedError) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(recordsBucket)).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			key := string(k)
			if isBlobKey(key) {
				continue
			}
			var flat map[string]any
			if err := json.Unmarshal(v, &flat); err != nil {
				continue
			}
			got, ok := flat[name]
			if !ok {
				if bag, bagOK := flat["fields"].(map[string]any); bagOK {
					got, ok = bag[name]
				}
			}
			if ok && fmt.Sprint(got) == fmt.Sprint(value) {
				keys = append(keys, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &StoreError{Message: fmt.Sprintf("filter by %s: %v", name, err), Cause: ErrCauseReadFailed, Retryable: false}
	}
	return keys, nil
}

// FilterByType returns every key whose record has the given type.
func (s *Store) FilterByType(t RecordType) ([]string, failure.ClassifiedError) {
	var keys []string
	err := s.Iterate(func(key string, r Record) bool {
		if r.Type == t {
			keys = append(keys, key)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Count returns the number of non-blob records in the store.
func (s *Store) Count() (int, failure.ClassifiedError) {
	count := 0
	err := s.Iterate(func(string, Record) bool {
		count++
		return true
	})
	return count, err
}
