package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	afsfile "github.com/viant/afs/file"
	afsurl "github.com/viant/afs/url"

	"github.com/pitabwire/clientkit/cache"
)

const entrySuffix = ".json"

// entry is the on-disk form of one key.
type entry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Cache stores one file per key under a base directory, so values survive restarts.
type Cache struct {
	mu       sync.RWMutex
	fs       afs.Service
	basePath string
	maxAge   time.Duration
	now      func() time.Time
}

// New creates a file cache rooted at the DSN's directory joined with the configured name.
func New(ctx context.Context, opts ...cache.Option) (cache.RawCache, error) {
	cacheOpts := cache.NewOptions(opts...)
	if !cacheOpts.DSN.IsFile() {
		return nil, fmt.Errorf("%w: %q is not a file:// location", cache.ErrUnsupportedDSN, cacheOpts.DSN)
	}

	basePath := afsurl.Normalize(path.Join(cacheOpts.DSN.FilePath(), cacheOpts.Name), afsfile.Scheme)

	fs := afs.New()
	exists, err := fs.Exists(ctx, basePath)
	if err != nil {
		return nil, fmt.Errorf("check base directory %s: %w", basePath, err)
	}
	if !exists {
		if err = fs.Create(ctx, basePath, afsfile.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("create base directory %s: %w", basePath, err)
		}
	}

	return &Cache{
		fs:       fs,
		basePath: basePath,
		maxAge:   cacheOpts.MaxAge,
		now:      time.Now,
	}, nil
}

func (c *Cache) keyPath(key string) string {
	return strings.TrimSuffix(c.basePath, "/") + "/" + fileName(key) + entrySuffix
}

// fileName maps a key to a flat, URL safe file name. Bytes outside [A-Za-z0-9.-]
// become _xx so distinct keys never share a file.
func fileName(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		ch := key[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '.', ch == '-':
			b.WriteByte(ch)
		default:
			fmt.Fprintf(&b, "_%02x", ch)
		}
	}
	return b.String()
}

func (c *Cache) load(ctx context.Context, key string) (*entry, error) {
	filePath := c.keyPath(key)
	exists, err := c.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", filePath, err)
	}
	if !exists {
		return nil, nil
	}

	raw, err := c.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}

	var e entry
	if err = json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return &e, nil
}

// Get retrieves an item; expired entries are removed and reported as missing.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, err := c.load(ctx, key)
	c.mu.RUnlock()
	if err != nil || e == nil {
		return nil, false, err
	}

	if e.expired(c.now()) {
		return nil, false, c.deleteExpired(ctx, key)
	}

	return e.Value, true, nil
}

func (e *entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// deleteExpired removes key only if the stored entry is still expired, so a
// concurrent Set is not lost.
func (c *Cache) deleteExpired(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, err := c.load(ctx, key)
	if err != nil || e == nil || !e.expired(c.now()) {
		return err
	}
	return c.fs.Delete(ctx, c.keyPath(key))
}

// Set writes the item, replacing any previous file for key.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.maxAge
	}

	e := entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	filePath := c.keyPath(key)
	if err = c.fs.Upload(ctx, filePath, afsfile.DefaultFileOsMode, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}
	return nil
}

// Delete removes the item. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	filePath := c.keyPath(key)
	exists, err := c.fs.Exists(ctx, filePath)
	if err != nil || !exists {
		return err
	}
	return c.fs.Delete(ctx, filePath)
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := c.Get(ctx, key)
	return found, err
}

// Flush removes every entry file under the base directory.
func (c *Cache) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	objects, err := c.fs.List(ctx, c.basePath)
	if err != nil {
		return fmt.Errorf("list %s: %w", c.basePath, err)
	}

	var errs []error
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), entrySuffix) {
			continue
		}
		if delErr := c.fs.Delete(ctx, object.URL()); delErr != nil {
			errs = append(errs, delErr)
		}
	}
	return errors.Join(errs...)
}

// Close releases nothing; files stay on disk.
func (c *Cache) Close() error {
	return nil
}
