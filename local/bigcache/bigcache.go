package bigcache

import (
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/tagcache/local"
)

// Store adapts BigCache to local.Store. BigCache has no per-entry TTL; every
// entry lives at most LifeWindow, so configure LifeWindow as the staleness
// bound instead of relying on tagcache's LocalTTL.
type Store struct {
	c *bc.BigCache
}

var _ local.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(key string) ([]byte, bool) {
	b, err := s.c.Get(key)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (s *Store) Set(key string, value []byte, _ time.Duration) bool {
	return s.c.Set(key, value) == nil
}

func (s *Store) Del(key string) {
	_ = s.c.Delete(key)
}

func (s *Store) Reset() error {
	return s.c.Reset()
}

func (s *Store) Close() error {
	return s.c.Close()
}
