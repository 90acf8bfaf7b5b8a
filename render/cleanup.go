package render

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanupPreset names a bundled cleanup configuration.
type CleanupPreset int

const (
	// CleanupMinimal normalizes Unicode and whitespace and nothing else.
	CleanupMinimal CleanupPreset = iota
	// CleanupStandard additionally expands ligatures, rejoins hyphenated
	// line breaks, standardizes bullets, strips page-number lines and
	// drops replacement characters.
	CleanupStandard
	// CleanupAggressive is CleanupStandard with newline runs collapsed
	// harder, for feeding extracted text to downstream tooling.
	CleanupAggressive
)

// CleanupOptions selects the text cleanup stages. Cleanup is always
// opt-in; no renderer applies it unless asked.
type CleanupOptions struct {
	// NormalizeUnicode recomposes text to NFC.
	NormalizeUnicode bool

	// FixLigatures expands typographic ligatures (U+FB00..U+FB06) to
	// their letter sequences.
	FixLigatures bool

	// FixHyphenation rejoins words hyphenated at line breaks.
	FixHyphenation bool

	// StandardizeBullets replaces bullet glyph variants with U+2022.
	StandardizeBullets bool

	// RemovePageNumbers drops lines holding only a (possibly dashed)
	// number.
	RemovePageNumbers bool

	// RemoveReplacementChar drops U+FFFD.
	RemoveReplacementChar bool

	// NormalizeWhitespace collapses runs of three or more spaces to two,
	// keeping Markdown indentation intact.
	NormalizeWhitespace bool

	// MaxConsecutiveNewlines caps newline runs; 0 leaves them alone.
	MaxConsecutiveNewlines int

	// PreserveFrontmatter keeps a leading YAML block out of the pipeline.
	PreserveFrontmatter bool
}

// CleanupOptionsFromPreset expands a preset into options.
func CleanupOptionsFromPreset(preset CleanupPreset) CleanupOptions {
	switch preset {
	case CleanupAggressive:
		opts := CleanupOptionsFromPreset(CleanupStandard)
		opts.MaxConsecutiveNewlines = 2
		return opts
	case CleanupStandard:
		return CleanupOptions{
			NormalizeUnicode:      true,
			FixLigatures:          true,
			FixHyphenation:        true,
			StandardizeBullets:    true,
			RemovePageNumbers:     true,
			RemoveReplacementChar: true,
			NormalizeWhitespace:   true,
			PreserveFrontmatter:   true,
		}
	default:
		return CleanupOptions{
			NormalizeUnicode:    true,
			NormalizeWhitespace: true,
			PreserveFrontmatter: true,
		}
	}
}

var ligatures = strings.NewReplacer(
	"ﬀ", "ff",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬅ", "st",
	"ﬆ", "st",
)

var bullets = strings.NewReplacer(
	"●", "•", "○", "•", "■", "•", "□", "•", "◆", "•",
	"◇", "•", "▪", "•", "▫", "•", "►", "•", "▻", "•",
)

var (
	pageNumberLine = regexp.MustCompile(`(?m)^\s*[-–—]?\s*\d+\s*[-–—]?\s*$`)
	hyphenBreak    = regexp.MustCompile(`([a-zA-Z])-\s*\n?\s*([a-z])`)
	spaceRun       = regexp.MustCompile(` {3,}`)
)

// Cleanup applies the selected stages to rendered text, in a fixed
// order: character-level fixes first, then line-level fixes, then
// whitespace shaping.
type Cleanup struct {
	opts CleanupOptions
}

// NewCleanup returns a pipeline with the given options.
func NewCleanup(opts CleanupOptions) *Cleanup {
	return &Cleanup{opts: opts}
}

// NewCleanupPreset returns a pipeline configured from a preset.
func NewCleanupPreset(preset CleanupPreset) *Cleanup {
	return NewCleanup(CleanupOptionsFromPreset(preset))
}

// Process runs the pipeline over text and returns the cleaned result.
func (c *Cleanup) Process(text string) string {
	if c.opts.PreserveFrontmatter {
		if fm, rest, ok := splitFrontmatter(text); ok {
			return fm + "\n" + c.processContent(rest)
		}
	}
	return c.processContent(text)
}

func (c *Cleanup) processContent(text string) string {
	if c.opts.NormalizeUnicode {
		text = norm.NFC.String(text)
	}
	if c.opts.FixLigatures {
		text = ligatures.Replace(text)
	}
	if c.opts.StandardizeBullets {
		text = bullets.Replace(text)
	}
	if c.opts.RemoveReplacementChar {
		text = strings.ReplaceAll(text, "�", "")
	}
	if c.opts.RemovePageNumbers {
		text = pageNumberLine.ReplaceAllString(text, "")
	}
	if c.opts.FixHyphenation {
		text = hyphenBreak.ReplaceAllString(text, "$1$2")
	}
	if c.opts.NormalizeWhitespace {
		text = spaceRun.ReplaceAllString(text, "  ")
	}
	if max := c.opts.MaxConsecutiveNewlines; max > 0 {
		text = limitNewlines(text, max)
	}
	return strings.TrimSpace(text)
}

// splitFrontmatter detaches a leading YAML block delimited by --- lines.
func splitFrontmatter(text string) (frontmatter, content string, ok bool) {
	rest, found := strings.CutPrefix(text, "---\n")
	if !found {
		return "", "", false
	}
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return "", "", false
	}
	cut := len("---\n") + end + len("\n---\n")
	return text[:cut], text[cut:], true
}

func limitNewlines(text string, max int) string {
	re := regexp.MustCompile(`\n{` + strconv.Itoa(max+1) + `,}`)
	return re.ReplaceAllString(text, strings.Repeat("\n", max))
}
