package ristretto

import (
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/tagcache/local"
)

// Store adapts Ristretto to local.Store. Entry cost is the value length in
// bytes, so MaxCost is roughly the cached byte volume.
type Store struct {
	c *rc.Cache
}

var _ local.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(key string) ([]byte, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		s.c.Del(key)
		return nil, false
	}
	return b, true
}

func (s *Store) Set(key string, value []byte, ttl time.Duration) bool {
	return s.c.SetWithTTL(key, value, int64(len(value)), ttl)
}

func (s *Store) Del(key string) {
	s.c.Del(key)
}

func (s *Store) Reset() error {
	s.c.Clear()
	return nil
}

func (s *Store) Close() error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes Ristretto's counters for the embedding application
// (not part of local.Store).
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
