// Package config holds the resource limits the parser enforces while
// loading a document. Limits come from the environment so embedders can
// tighten them without an API call; UNPDF_ENV_FILE points at an optional
// env file loaded before the variables are read.
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Limits caps the resources a single parse may consume. A zero field means
// "use the default"; defaults are generous enough for ordinary documents.
type Limits struct {
	// MaxFileSize caps the byte source, in bytes.
	MaxFileSize int64
	// MaxStreamSize caps a single decoded stream, in bytes.
	MaxStreamSize int64
	// MaxObjects caps the number of indirect objects loaded.
	MaxObjects int
	// MaxPages caps the page tree.
	MaxPages int
	// MaxDepth caps reference-chain and page-tree recursion.
	MaxDepth int
}

// DefaultLimits returns the built-in caps.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:   1 << 30,  // 1 GiB
		MaxStreamSize: 256 << 20, // 256 MiB
		MaxObjects:    1_000_000,
		MaxPages:      50_000,
		MaxDepth:      64,
	}
}

var (
	envOnce   sync.Once
	envLimits Limits
)

// FromEnv returns DefaultLimits overridden by UNPDF_MAX_FILE_SIZE,
// UNPDF_MAX_STREAM_SIZE, UNPDF_MAX_OBJECTS, UNPDF_MAX_PAGES and
// UNPDF_MAX_DEPTH. The environment is read once per process.
func FromEnv() Limits {
	envOnce.Do(func() {
		if path := os.Getenv("UNPDF_ENV_FILE"); path != "" {
			_ = godotenv.Load(path)
		}
		l := DefaultLimits()
		l.MaxFileSize = envInt64("UNPDF_MAX_FILE_SIZE", l.MaxFileSize)
		l.MaxStreamSize = envInt64("UNPDF_MAX_STREAM_SIZE", l.MaxStreamSize)
		l.MaxObjects = envInt("UNPDF_MAX_OBJECTS", l.MaxObjects)
		l.MaxPages = envInt("UNPDF_MAX_PAGES", l.MaxPages)
		l.MaxDepth = envInt("UNPDF_MAX_DEPTH", l.MaxDepth)
		envLimits = l
	})
	return envLimits
}

// Normalize fills zero fields from the defaults.
func (l Limits) Normalize() Limits {
	d := DefaultLimits()
	if l.MaxFileSize <= 0 {
		l.MaxFileSize = d.MaxFileSize
	}
	if l.MaxStreamSize <= 0 {
		l.MaxStreamSize = d.MaxStreamSize
	}
	if l.MaxObjects <= 0 {
		l.MaxObjects = d.MaxObjects
	}
	if l.MaxPages <= 0 {
		l.MaxPages = d.MaxPages
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	return l
}

func envInt64(key string, def int64) int64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if parsed, err := strconv.ParseInt(s, 10, 64); err == nil && parsed > 0 {
		return parsed
	}
	return def
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
		return parsed
	}
	return def
}
