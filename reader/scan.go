package reader

import (
	"bytes"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/pdferr"
)

// objHeaderPattern matches the "N G obj" line that opens every indirect
// object. Scanning for it rebuilds an xref table when the real one is
// gone; binary stream data can produce false positives, which later
// type checks simply never reach.
var objHeaderPattern = regexp.MustCompile(`(\d+)\s+(\d+)\s+obj\b`)

// rebuildXRef reconstructs the cross-reference table by scanning the whole
// source for object headers. The last occurrence of each object number
// wins, matching how incremental updates shadow earlier revisions. The
// trailer is taken from the last trailer dictionary that names a /Root;
// failing that, the catalog is hunted down by type.
func (r *Reader) rebuildXRef() (*core.XRefTable, error) {
	buf := make([]byte, r.size)
	if _, err := r.src.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, pdferr.IO(err)
	}

	entries := make(map[int]*core.XRefEntry)
	for _, loc := range objHeaderPattern.FindAllSubmatchIndex(buf, -1) {
		objNum, err := strconv.Atoi(string(buf[loc[2]:loc[3]]))
		if err != nil {
			continue
		}
		gen, err := strconv.Atoi(string(buf[loc[4]:loc[5]]))
		if err != nil {
			continue
		}
		entries[objNum] = &core.XRefEntry{
			Offset:     int64(loc[0]),
			Generation: gen,
			InUse:      true,
		}
	}
	if len(entries) == 0 {
		return nil, pdferr.Corrupted(nil, "no objects found by scanning")
	}
	if max := r.cfg.Limits.MaxObjects; max > 0 && len(entries) > max {
		return nil, pdferr.Corrupted(nil, "scan found %d objects, limit is %d", len(entries), max)
	}

	table := &core.XRefTable{Entries: entries, Trailer: core.Dict{}}
	if trailer := scanTrailer(buf); trailer != nil {
		table.Trailer = trailer
	}
	if table.Trailer.Get("Root") == nil {
		// The scanner needs the provisional table to load candidates.
		r.xref = table
		if err := r.scanForCatalog(table); err != nil {
			return nil, err
		}
	}

	r.log.WithField("objects", len(entries)).Debug("rebuilt cross-reference table")
	return table, nil
}

// scanTrailer finds the last trailer dictionary that carries a /Root.
func scanTrailer(buf []byte) core.Dict {
	pos := len(buf)
	for {
		idx := bytes.LastIndex(buf[:pos], []byte("trailer"))
		if idx < 0 {
			return nil
		}
		pos = idx

		p := core.NewParser(bytes.NewReader(buf[idx+len("trailer"):]))
		obj, err := p.ParseObject()
		if err != nil {
			continue
		}
		dict, ok := obj.(core.Dict)
		if !ok || dict.Get("Root") == nil {
			continue
		}
		return dict
	}
}

// scanForCatalog synthesizes a trailer pointing at the first object whose
// dictionary says /Type /Catalog.
func (r *Reader) scanForCatalog(table *core.XRefTable) error {
	nums := make([]int, 0, len(table.Entries))
	maxNum := 0
	for n := range table.Entries {
		nums = append(nums, n)
		if n > maxNum {
			maxNum = n
		}
	}
	sort.Ints(nums)

	for _, n := range nums {
		obj, err := r.GetObject(n)
		if err != nil {
			continue
		}
		dict, ok := obj.(core.Dict)
		if !ok {
			continue
		}
		if name, ok := dict.GetName("Type"); ok && name == "Catalog" {
			table.Trailer.Set("Size", core.Int(maxNum+1))
			table.Trailer.Set("Root", core.IndirectRef{Number: n})
			return nil
		}
	}
	return pdferr.Corrupted(nil, "no document catalog found by scanning")
}
