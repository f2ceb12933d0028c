// Package cache is the on-disk store for assembled reports and the
// per-provider model selection. Every read degrades to a miss; writes return
// their error so callers can log it, but nothing here is fatal.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"last30days/internal/model"
)

const (
	DefaultTTL      = 24 * time.Hour
	DefaultModelTTL = 7 * 24 * time.Hour

	modelFile    = "model_selection.json"
	updatedAtKey = "updated_at"
)

// ReportStore persists assembled reports by query key.
type ReportStore interface {
	LoadReport(key string) (*model.Report, float64, bool)
	SaveReport(key string, r *model.Report) error
}

// Cache is a handle on one cache directory.
type Cache struct {
	root     string
	ttl      time.Duration
	modelTTL time.Duration
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Cache)

// WithClock replaces time.Now. Saved files are stamped with the clock's
// time so age checks stay consistent with it.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithModelTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.modelTTL = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a cache rooted at root, or DefaultRoot when root is empty.
// The directory is created lazily on the first write.
func New(root string, opts ...Option) *Cache {
	if root == "" {
		root = DefaultRoot()
	}
	c := &Cache{
		root:     root,
		ttl:      DefaultTTL,
		modelTTL: DefaultModelTTL,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DefaultRoot is $HOME/.cache/last30days.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "last30days")
	}
	return filepath.Join(home, ".cache", "last30days")
}

// Root returns the cache directory.
func (c *Cache) Root() string { return c.root }

// Key derives the report key for one query.
func Key(topic, from, to, sources string) string {
	sum := sha256.Sum256([]byte(topic + "|" + from + "|" + to + "|" + sources))
	return hex.EncodeToString(sum[:])[:16]
}

func (c *Cache) reportPath(key string) string {
	return filepath.Join(c.root, key+".json")
}

// age returns how old the file at path is, and whether it is younger than ttl.
func (c *Cache) age(path string, ttl time.Duration) (time.Duration, bool) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	age := c.now().Sub(st.ModTime())
	return age, age < ttl
}

// LoadReport returns the cached report and its age in hours. Missing,
// expired and undecodable entries are all reported as a miss.
func (c *Cache) LoadReport(key string) (*model.Report, float64, bool) {
	path := c.reportPath(key)
	age, fresh := c.age(path, c.ttl)
	if !fresh {
		return nil, 0, false
	}
	b, err := os.ReadFile(path)
	if err != nil {
		c.log.Debug("cache: read report failed", "key", key, "err", err)
		return nil, 0, false
	}
	r, err := model.DecodeReport(b)
	if err != nil {
		c.log.Debug("cache: decode report failed", "key", key, "err", err)
		return nil, 0, false
	}
	return r, age.Hours(), true
}

// SaveReport writes the report under key.
func (c *Cache) SaveReport(key string, r *model.Report) error {
	b, err := r.Encode()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.writeFile(c.reportPath(key), b); err != nil {
		return err
	}
	c.log.Debug("cache: saved report", "key", key, "bytes", len(b))
	return nil
}

// writeFile replaces path atomically via a temp file in the same directory.
func (c *Cache) writeFile(path string, b []byte) error {
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	now := c.now()
	if err := os.Chtimes(path, now, now); err != nil {
		c.log.Debug("cache: set mtime failed", "path", path, "err", err)
	}
	return nil
}

// Clear removes every cached report and returns how many were deleted. The
// model selection file survives.
func (c *Cache) Clear() (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.root, "*.json"))
	if err != nil {
		return 0, err
	}
	n := 0
	var errs []error
	for _, m := range matches {
		if filepath.Base(m) == modelFile {
			continue
		}
		if err := os.Remove(m); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (c *Cache) loadModels() map[string]string {
	path := filepath.Join(c.root, modelFile)
	if _, fresh := c.age(path, c.modelTTL); !fresh {
		return map[string]string{}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}
	}
	out := map[string]string{}
	if err := json.Unmarshal(b, &out); err != nil {
		c.log.Debug("cache: decode model selection failed", "err", err)
		return map[string]string{}
	}
	return out
}

// CachedModel returns the remembered model for provider, if still fresh.
func (c *Cache) CachedModel(provider string) (string, bool) {
	if provider == updatedAtKey {
		return "", false
	}
	m, ok := c.loadModels()[provider]
	m = strings.TrimSpace(m)
	return m, ok && m != ""
}

// SetCachedModel remembers model for provider and refreshes updated_at.
func (c *Cache) SetCachedModel(provider, model string) error {
	models := c.loadModels()
	models[provider] = model
	models[updatedAtKey] = c.now().UTC().Format(time.RFC3339)
	b, err := json.Marshal(models)
	if err != nil {
		return err
	}
	return c.writeFile(filepath.Join(c.root, modelFile), b)
}
