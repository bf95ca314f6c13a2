package data

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Supported persistence schemes.
const (
	MemScheme    = "mem://"
	FileScheme   = "file://"
	RedisScheme  = "redis://"
	ValkeyScheme = "valkey://"
	NatsScheme   = "nats://"
)

// A DSN for conveniently handling a URI connection string.
type DSN string

func (d DSN) IsMem() bool {
	return strings.HasPrefix(string(d), MemScheme)
}

func (d DSN) IsFile() bool {
	return strings.HasPrefix(string(d), FileScheme)
}

func (d DSN) IsRedis() bool {
	return strings.HasPrefix(string(d), RedisScheme)
}

func (d DSN) IsValkey() bool {
	return strings.HasPrefix(string(d), ValkeyScheme)
}

func (d DSN) IsNats() bool {
	return strings.HasPrefix(string(d), NatsScheme)
}

// IsCache reports whether the DSN points at a networked key-value server.
func (d DSN) IsCache() bool {
	return d.IsRedis() || d.IsValkey()
}

func (d DSN) ToURI() (*url.URL, error) {
	return url.Parse(string(d))
}

// FilePath returns the local directory a file:// DSN refers to.
// Relative forms such as file://./state keep their relative meaning.
func (d DSN) FilePath() string {
	p := strings.TrimPrefix(string(d), FileScheme)
	if p == "" {
		return "."
	}
	return filepath.Clean(p)
}

// AsRedis rewrites a valkey:// DSN into the redis:// form both clients understand.
func (d DSN) AsRedis() DSN {
	if d.IsValkey() {
		return DSN(RedisScheme + strings.TrimPrefix(string(d), ValkeyScheme))
	}
	return d
}

func (d DSN) ExtendPath(epath ...string) DSN {
	nuURI, err := d.ToURI()
	if err != nil {
		return d
	}

	nuPathPieces := []string{nuURI.Path}
	nuPathPieces = append(nuPathPieces, epath...)

	nuURI.Path = path.Join(nuPathPieces...)

	return DSN(nuURI.String())
}

func (d DSN) GetQuery(key string) string {
	nuURI, err := d.ToURI()
	if err != nil {
		return ""
	}

	return nuURI.Query().Get(key)
}

func (d DSN) String() string {
	return string(d)
}
