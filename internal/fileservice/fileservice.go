// Package fileservice persists versioned, checksummed records for one
// currency and network on top of a storage.DB.
package fileservice

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/walletkit-core/internal/log"
	"github.com/Klingon-tech/walletkit-core/internal/storage"
	"github.com/Klingon-tech/walletkit-core/pkg/crypto"
	"github.com/Klingon-tech/walletkit-core/pkg/types"
	"github.com/rs/zerolog"
)

// Record errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrChecksum  = errors.New("record checksum mismatch")
	ErrVersion   = errors.New("record version mismatch")
	ErrCorrupt   = errors.New("record too short")
	ErrBadKey    = errors.New("record key must be non-empty and free of '/'")
	ErrBadType   = errors.New("record type name must be non-empty and free of '/'")
	ErrNamespace = errors.New("currency and network must be non-empty and free of '/'")
)

// record layout: version(1) | blake3(payload)(32) | payload
const recordHeaderSize = 1 + types.HashSize

// RecordType names a kind of record and the version its payload is
// encoded with.
type RecordType struct {
	Name    string
	Version uint8
}

// Service is the persistence contract used by the wallet managers.
type Service interface {
	Put(t RecordType, key string, data []byte) error
	// Get returns ErrNotFound for a missing record.
	Get(t RecordType, key string) ([]byte, error)
	Delete(t RecordType, key string) error
	// ForEach visits every record of type t in key order.
	ForEach(t RecordType, fn func(key string, data []byte) error) error
	// Replace swaps all records of type t for records in one write.
	Replace(t RecordType, records map[string][]byte) error
}

// Store is the durable Service: records live under
// "<currency>/<network>/<type>/<key>" in the backing DB.
type Store struct {
	db     *storage.PrefixDB
	logger zerolog.Logger
}

// New returns a Store for currency and network inside db. Several stores
// may share one db.
func New(db storage.DB, currency, network string) (*Store, error) {
	if !validSegment(currency) || !validSegment(network) {
		return nil, fmt.Errorf("%w: %q/%q", ErrNamespace, currency, network)
	}
	return &Store{
		db:     storage.NewPrefixDB(db, []byte(currency+"/"+network+"/")),
		logger: log.WithNetwork(log.Storage, currency, network),
	}, nil
}

// Put stores data as the record t/key, replacing any previous value.
func (s *Store) Put(t RecordType, key string, data []byte) error {
	k, err := recordKey(t, key)
	if err != nil {
		return err
	}
	if err := s.db.Put(k, encodeRecord(t.Version, data)); err != nil {
		s.logger.Error().Err(err).Str("type", t.Name).Str("key", key).Msg("Record write failed")
		return fmt.Errorf("put %s/%s: %w", t.Name, key, err)
	}
	return nil
}

// Get loads and verifies the record t/key.
func (s *Store) Get(t RecordType, key string) ([]byte, error) {
	k, err := recordKey(t, key)
	if err != nil {
		return nil, err
	}
	raw, err := s.db.Get(k)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("type", t.Name).Str("key", key).Msg("Record read failed")
		return nil, fmt.Errorf("get %s/%s: %w", t.Name, key, err)
	}
	data, err := decodeRecord(t.Version, raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("type", t.Name).Str("key", key).Msg("Rejected stored record")
		return nil, fmt.Errorf("get %s/%s: %w", t.Name, key, err)
	}
	return data, nil
}

// Delete removes the record t/key. Deleting a missing record succeeds.
func (s *Store) Delete(t RecordType, key string) error {
	k, err := recordKey(t, key)
	if err != nil {
		return err
	}
	if err := s.db.Delete(k); err != nil {
		return fmt.Errorf("delete %s/%s: %w", t.Name, key, err)
	}
	return nil
}

// ForEach visits every record of type t. A record failing verification
// stops the walk with its error.
func (s *Store) ForEach(t RecordType, fn func(key string, data []byte) error) error {
	if !validSegment(t.Name) {
		return fmt.Errorf("%w: %q", ErrBadType, t.Name)
	}
	prefix := []byte(t.Name + "/")
	return s.db.ForEach(prefix, func(k, raw []byte) error {
		key := string(k[len(prefix):])
		data, err := decodeRecord(t.Version, raw)
		if err != nil {
			s.logger.Warn().Err(err).Str("type", t.Name).Str("key", key).Msg("Rejected stored record")
			return fmt.Errorf("record %s/%s: %w", t.Name, key, err)
		}
		return fn(key, data)
	})
}

// Replace atomically deletes every record of type t and writes records.
func (s *Store) Replace(t RecordType, records map[string][]byte) error {
	if !validSegment(t.Name) {
		return fmt.Errorf("%w: %q", ErrBadType, t.Name)
	}
	batch := s.db.NewBatch()
	err := s.db.ForEach([]byte(t.Name+"/"), func(k, _ []byte) error {
		return batch.Delete(k)
	})
	if err != nil {
		return err
	}
	for key, data := range records {
		k, err := recordKey(t, key)
		if err != nil {
			return err
		}
		if err := batch.Put(k, encodeRecord(t.Version, data)); err != nil {
			return err
		}
	}
	return batch.Commit()
}

// Wipe deletes every record of the store's currency and network.
func (s *Store) Wipe() error {
	if err := s.db.DeleteAll(); err != nil {
		s.logger.Error().Err(err).Msg("Wipe failed")
		return fmt.Errorf("wipe: %w", err)
	}
	s.logger.Info().Msg("Records wiped")
	return nil
}

func encodeRecord(version uint8, data []byte) []byte {
	sum := crypto.Checksum(data)
	out := make([]byte, 0, recordHeaderSize+len(data))
	out = append(out, version)
	out = append(out, sum[:]...)
	return append(out, data...)
}

func decodeRecord(version uint8, raw []byte) ([]byte, error) {
	if len(raw) < recordHeaderSize {
		return nil, ErrCorrupt
	}
	if raw[0] != version {
		return nil, fmt.Errorf("%w: stored %d, want %d", ErrVersion, raw[0], version)
	}
	data := raw[recordHeaderSize:]
	sum := crypto.Checksum(data)
	if !bytes.Equal(sum[:], raw[1:recordHeaderSize]) {
		return nil, ErrChecksum
	}
	return data, nil
}

func recordKey(t RecordType, key string) ([]byte, error) {
	if !validSegment(t.Name) {
		return nil, fmt.Errorf("%w: %q", ErrBadType, t.Name)
	}
	if !validSegment(key) {
		return nil, fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return []byte(t.Name + "/" + key), nil
}

func validSegment(s string) bool {
	return s != "" && !strings.Contains(s, "/")
}
