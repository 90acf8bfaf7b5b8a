package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/internal/config"
	"github.com/unpdf/unpdf/internal/logging"
	"github.com/unpdf/unpdf/pdferr"
	"github.com/unpdf/unpdf/resolver"
)

// headerWindow is how far into the source the %PDF- signature may start.
// Producers prepend junk (HTTP headers, printer prologues) and offsets in
// the file are relative to the signature, not byte zero.
const headerWindow = 1024

// Config controls how strict the reader is and how much it extracts.
type Config struct {
	// Lenient rebuilds a damaged cross-reference table by scanning for
	// objects and degrades per page instead of failing the whole parse.
	Lenient bool

	// TextOnly skips resource extraction and image placement entirely.
	TextOnly bool

	// SkipResources drops resource payloads but keeps image placement
	// blocks, so sections still show where images sit.
	SkipResources bool

	// Pages selects which 1-based pages to materialize, in the order
	// given. Nil means every page.
	Pages []int

	// Limits bounds parsing work; zero-value fields take the defaults.
	Limits config.Limits
}

// DefaultConfig returns the strict, extract-everything configuration.
func DefaultConfig() Config {
	return Config{Limits: config.DefaultLimits()}
}

// Reader gives random access to the objects of a single PDF. It validates
// the header, loads the cross-reference machinery up front and then
// materializes objects on demand, caching each one. It does not keep any
// reference to the source after BuildDocument returns.
type Reader struct {
	src  *io.SectionReader // window starting at the %PDF- signature
	size int64

	version string
	xref    *core.XRefTable
	trailer core.Dict

	cfg      Config
	resolver *resolver.ObjectResolver

	objCache map[int]core.Object
	objstms  map[int]*core.ObjectStream
	loaded   int

	repaired bool
	file     *os.File // set only by Open; closed by Close
	log      *logrus.Entry
}

var (
	_ core.ReferenceResolver = (*Reader)(nil)
	_ resolver.ObjectReader  = (*Reader)(nil)
)

// NewReader builds a reader over an in-memory or random-access source.
func NewReader(src io.ReaderAt, size int64) (*Reader, error) {
	return NewReaderWithConfig(src, size, DefaultConfig())
}

// NewReaderWithConfig is NewReader with explicit configuration.
func NewReaderWithConfig(src io.ReaderAt, size int64, cfg Config) (*Reader, error) {
	cfg.Limits = cfg.Limits.Normalize()
	if cfg.Limits.MaxFileSize > 0 && size > cfg.Limits.MaxFileSize {
		return nil, pdferr.Parse(nil, "source is %d bytes, limit is %d", size, cfg.Limits.MaxFileSize)
	}

	r := &Reader{
		cfg:      cfg,
		objCache: make(map[int]core.Object),
		objstms:  make(map[int]*core.ObjectStream),
		log:      logging.Component("reader"),
	}
	if err := r.findHeader(src, size); err != nil {
		return nil, err
	}
	if err := r.loadXRef(); err != nil {
		return nil, err
	}
	if r.trailer != nil && r.trailer.Get("Encrypt") != nil {
		return nil, pdferr.Encrypted()
	}
	r.resolver = resolver.NewResolver(r, resolver.WithMaxDepth(cfg.Limits.MaxDepth))
	return r, nil
}

// Open opens path and builds a reader over it. The caller owns the
// returned reader and must Close it.
func Open(path string) (*Reader, error) {
	return OpenWithConfig(path, DefaultConfig())
}

// OpenWithConfig is Open with explicit configuration.
func OpenWithConfig(path string, cfg Config) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pdferr.IO(err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, pdferr.IO(err)
	}

	r, err := NewReaderWithConfig(file, info.Size(), cfg)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// Close releases the underlying file when the reader was built by Open.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Version returns the header version, e.g. "1.7".
func (r *Reader) Version() string { return r.version }

// Trailer returns the document trailer dictionary.
func (r *Reader) Trailer() core.Dict { return r.trailer }

// Repaired reports whether the cross-reference table had to be rebuilt by
// scanning. Always false outside lenient mode.
func (r *Reader) Repaired() bool { return r.repaired }

// Resolver returns the reference resolver bound to this reader.
func (r *Reader) Resolver() *resolver.ObjectResolver { return r.resolver }

// findHeader locates the %PDF-x.y signature in the first kilobyte and
// re-bases the source on it, so stored offsets line up again.
func (r *Reader) findHeader(src io.ReaderAt, size int64) error {
	window := int64(headerWindow + 8)
	if size < window {
		window = size
	}
	buf := make([]byte, window)
	if _, err := io.ReadFull(io.NewSectionReader(src, 0, window), buf); err != nil {
		return pdferr.IO(err)
	}

	idx := bytes.Index(buf, []byte("%PDF-"))
	if idx < 0 || idx >= headerWindow || idx+8 > len(buf) {
		return pdferr.UnknownFormat()
	}
	major, dot, minor := buf[idx+5], buf[idx+6], buf[idx+7]
	if major < '0' || major > '9' || dot != '.' || minor < '0' || minor > '9' {
		return pdferr.UnknownFormat()
	}
	if major != '1' && major != '2' {
		return pdferr.UnsupportedVersion(fmt.Sprintf("%c.%c", major, minor))
	}

	r.version = fmt.Sprintf("%c.%c", major, minor)
	r.src = io.NewSectionReader(src, int64(idx), size-int64(idx))
	r.size = size - int64(idx)
	return nil
}

// loadXRef loads the full cross-reference chain. A trailer without /Root
// counts as unusable: nothing can be reached from it. In lenient mode an
// unusable table is rebuilt by scanning the source for objects.
func (r *Reader) loadXRef() error {
	table, err := core.NewXRefParser(r.src).LoadAll()
	if err == nil && table.Trailer.Get("Root") == nil {
		err = fmt.Errorf("trailer has no /Root entry")
	}
	if err != nil {
		if !r.cfg.Lenient {
			return pdferr.Corrupted(err, "cross-reference table: %v", err)
		}
		r.log.WithError(err).Warn("cross-reference table unusable, scanning for objects")
		table, err = r.rebuildXRef()
		if err != nil {
			return err
		}
		r.repaired = true
	}
	r.xref = table
	r.trailer = table.Trailer
	return nil
}

// GetObject loads the numbered object, from cache when already seen. Free
// entries resolve to null the way dangling references do.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}

	entry, ok := r.xref.Entries[objNum]
	if !ok {
		return nil, pdferr.MissingObject(fmt.Sprintf("object %d", objNum))
	}
	if !entry.InUse {
		return core.Null{}, nil
	}

	if max := r.cfg.Limits.MaxObjects; max > 0 && r.loaded >= max {
		return nil, pdferr.Corrupted(nil, "object load limit %d exceeded", max)
	}
	r.loaded++

	var (
		obj core.Object
		err error
	)
	if entry.InObjectStream {
		obj, err = r.loadFromObjectStream(objNum, entry)
	} else {
		obj, err = r.loadAt(objNum, entry.Offset)
	}
	if err != nil {
		return nil, err
	}

	r.objCache[objNum] = obj
	return obj, nil
}

// ResolveReference implements core.ReferenceResolver and resolver.ObjectReader.
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// loadAt parses the indirect object stored at offset.
func (r *Reader) loadAt(objNum int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= r.size {
		return nil, pdferr.Corrupted(nil, "object %d offset %d is outside the file", objNum, offset)
	}

	p := core.NewParser(io.NewSectionReader(r.src, offset, r.size-offset))
	p.SetReferenceResolver(r)
	p.SetMaxDepth(r.cfg.Limits.MaxDepth)
	iobj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, pdferr.Corrupted(err, "object %d at offset %d: %v", objNum, offset, err)
	}
	if iobj.Ref.Number != objNum {
		return nil, pdferr.Corrupted(nil, "offset %d holds object %d, expected %d", offset, iobj.Ref.Number, objNum)
	}
	return iobj.Object, nil
}

// loadFromObjectStream pulls a compressed object out of its container
// stream, loading and caching the container on first use.
func (r *Reader) loadFromObjectStream(objNum int, entry *core.XRefEntry) (core.Object, error) {
	stm, ok := r.objstms[entry.StreamNumber]
	if !ok {
		container, err := r.GetObject(entry.StreamNumber)
		if err != nil {
			return nil, err
		}
		stream, isStream := container.(*core.Stream)
		if !isStream {
			return nil, pdferr.Corrupted(nil, "object %d is not an object stream", entry.StreamNumber)
		}
		stm, err = core.NewObjectStream(stream)
		if err != nil {
			return nil, pdferr.Corrupted(err, "object stream %d: %v", entry.StreamNumber, err)
		}
		r.objstms[entry.StreamNumber] = stm
	}

	obj, num, err := stm.GetObjectByIndex(entry.StreamIndex)
	if err == nil && num == objNum {
		return obj, nil
	}
	// The index can lie when incremental updates shuffled the stream;
	// fall back to searching by number.
	obj, _, err = stm.GetObjectByNumber(objNum)
	if err != nil {
		return nil, pdferr.Corrupted(err, "object %d in object stream %d: %v", objNum, entry.StreamNumber, err)
	}
	return obj, nil
}

// Catalog returns the document catalog from the trailer's /Root.
func (r *Reader) Catalog() (core.Dict, error) {
	root := r.trailer.Get("Root")
	if root == nil {
		return nil, pdferr.Corrupted(nil, "trailer has no /Root entry")
	}
	dict, err := r.resolver.ResolveDict(root)
	if err != nil {
		return nil, pdferr.Corrupted(err, "document catalog: %v", err)
	}
	return dict, nil
}

// Info returns the document information dictionary, or nil when the
// trailer has none.
func (r *Reader) Info() (core.Dict, error) {
	info := r.trailer.Get("Info")
	if info == nil {
		return nil, nil
	}
	dict, err := r.resolver.ResolveDict(info)
	if err != nil {
		// A broken Info dictionary loses metadata, not the document.
		r.log.WithError(err).Debug("info dictionary unreadable")
		return nil, nil
	}
	return dict, nil
}

// checkStreamLimit guards decoded stream payloads against the configured
// ceiling.
func (r *Reader) checkStreamLimit(n int) error {
	if max := r.cfg.Limits.MaxStreamSize; max > 0 && int64(n) > max {
		return pdferr.Corrupted(nil, "stream of %d bytes exceeds the %d byte limit", n, max)
	}
	return nil
}
