package unpdf

import (
	"github.com/unpdf/unpdf/internal/config"
	"github.com/unpdf/unpdf/reader"
)

// Option adjusts how a document is parsed. The default is strict parsing
// with full extraction of every page.
type Option func(*settings)

type settings struct {
	cfg      reader.Config
	password string
}

// WithLenient makes parsing best-effort: a damaged cross-reference table
// is rebuilt by scanning, and a page whose content cannot be fully
// decoded yields a section with whatever was recovered instead of
// failing the parse.
func WithLenient() Option {
	return func(s *settings) { s.cfg.Lenient = true }
}

// WithTextOnly skips resource extraction and image placement; the
// resulting document has text content only.
func WithTextOnly() Option {
	return func(s *settings) { s.cfg.TextOnly = true }
}

// WithoutResources keeps image placement blocks in sections but drops the
// resource payloads, so the document stays small.
func WithoutResources() Option {
	return func(s *settings) { s.cfg.SkipResources = true }
}

// WithPages materializes only the given 1-based pages, in the order
// given. The resulting sections are renumbered contiguously from 0. A
// page outside the document fails the parse.
func WithPages(pages ...int) Option {
	return func(s *settings) { s.cfg.Pages = append([]int(nil), pages...) }
}

// WithPassword supplies a password for encrypted documents. Decryption is
// not implemented: an encrypted document fails with "Document is
// encrypted" regardless of the password. The option exists so callers do
// not have to change when support lands.
func WithPassword(password string) Option {
	return func(s *settings) { s.password = password }
}

// WithLimits overrides the parser's resource limits. Zero fields keep
// their defaults.
func WithLimits(limits config.Limits) Option {
	return func(s *settings) { s.cfg.Limits = limits }
}

func buildConfig(opts []Option) reader.Config {
	s := settings{cfg: reader.Config{Limits: config.FromEnv()}}
	for _, opt := range opts {
		opt(&s)
	}
	return s.cfg
}
