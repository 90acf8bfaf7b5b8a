package reader

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/font"
	"github.com/unpdf/unpdf/model"
)

// objectResolver resolves possibly-indirect objects. The builders in this
// package take it instead of the concrete resolver so fixtures can stand
// in during tests.
type objectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// buildMetadata maps the document information dictionary onto the model.
// Absent entries stay nil pointers; present-but-empty strings survive as
// pointers to "".
func buildMetadata(info core.Dict, res objectResolver, version string, pageCount int) model.Metadata {
	meta := model.Metadata{
		PDFVersion: version,
		PageCount:  pageCount,
	}
	if info == nil {
		return meta
	}

	meta.Title = infoText(info, "Title", res)
	meta.Author = infoText(info, "Author", res)
	meta.Subject = infoText(info, "Subject", res)
	meta.Keywords = infoText(info, "Keywords", res)
	meta.Creator = infoText(info, "Creator", res)
	meta.Producer = infoText(info, "Producer", res)
	meta.Created = infoDate(info, "CreationDate", res)
	meta.Modified = infoDate(info, "ModDate", res)
	return meta
}

// infoText fetches one Info string. A value of the wrong type counts as
// absent rather than failing the whole dictionary.
func infoText(info core.Dict, key string, res objectResolver) *string {
	obj := info.Get(key)
	if obj == nil {
		return nil
	}
	if res != nil {
		if v, err := res.Resolve(obj); err == nil {
			obj = v
		}
	}
	s, ok := obj.(core.String)
	if !ok {
		return nil
	}
	decoded := decodeTextString([]byte(s))
	return &decoded
}

func infoDate(info core.Dict, key string, res objectResolver) *time.Time {
	obj := info.Get(key)
	if obj == nil {
		return nil
	}
	if res != nil {
		if v, err := res.Resolve(obj); err == nil {
			obj = v
		}
	}
	s, ok := obj.(core.String)
	if !ok {
		return nil
	}
	return parseDate(string(s))
}

// decodeTextString decodes a PDF text string: UTF-16 when a BOM says so,
// UTF-8 when the bytes are valid as such, Latin-1 as the fallback the
// format prescribes. The result is NFC-normalized.
func decodeTextString(b []byte) string {
	var s string
	switch {
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		s = font.DecodeUTF16BE(b[2:])
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		s = font.DecodeUTF16LE(b[2:])
	case utf8.Valid(b):
		s = string(b)
	default:
		runes := make([]rune, len(b))
		for i, c := range b {
			runes[i] = rune(c)
		}
		s = string(runes)
	}
	return font.NormalizeUnicode(s)
}

// parseDate parses the PDF date form D:YYYYMMDDHHmmSSOHH'mm' where every
// component after the year is optional. Unparseable dates return nil;
// metadata dates are not worth failing a parse over.
func parseDate(s string) *time.Time {
	s = strings.TrimPrefix(s, "D:")
	if len(s) < 4 {
		return nil
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return nil
	}
	rest := s[4:]

	month, day := 1, 1
	var hour, minute, sec int
	fields := []struct {
		dst      *int
		min, max int
	}{
		{&month, 1, 12},
		{&day, 1, 31},
		{&hour, 0, 23},
		{&minute, 0, 59},
		{&sec, 0, 59},
	}
	for _, f := range fields {
		if len(rest) < 2 {
			break
		}
		v, err := strconv.Atoi(rest[:2])
		if err != nil {
			break
		}
		if v < f.min || v > f.max {
			return nil
		}
		*f.dst = v
		rest = rest[2:]
	}

	loc := time.UTC
	if len(rest) > 0 {
		switch rest[0] {
		case 'Z':
			// UTC, possibly followed by 00'00'.
		case '+', '-':
			offset, ok := parseTZOffset(rest)
			if !ok {
				return nil
			}
			loc = time.FixedZone("", offset)
		}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc)
	return &t
}

// parseTZOffset parses ±HH'mm' (apostrophes and minutes optional) into
// seconds east of UTC.
func parseTZOffset(s string) (int, bool) {
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	s = s[1:]
	if len(s) < 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(s[:2])
	if err != nil || hours > 23 {
		return 0, false
	}
	s = strings.TrimPrefix(s[2:], "'")
	minutes := 0
	if len(s) >= 2 {
		if v, err := strconv.Atoi(s[:2]); err == nil && v < 60 {
			minutes = v
		}
	}
	return sign * (hours*3600 + minutes*60), true
}
