package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// XRefEntry locates one indirect object. In-use objects live at a byte
// offset; compressed objects live inside an object stream and are addressed
// by that stream's object number and an index.
type XRefEntry struct {
	Offset         int64
	Generation     int
	InUse          bool
	InObjectStream bool
	StreamNumber   int // object number of the holding /ObjStm
	StreamIndex    int // position within the stream
}

// XRefTable maps object numbers to their entries, plus the trailer
// dictionary of the section it came from.
type XRefTable struct {
	Entries map[int]*XRefEntry
	Trailer Dict
}

// NewXRefTable returns an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

// Get returns the entry for objNum.
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

// Set stores an entry for objNum.
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

// Size returns the number of entries.
func (x *XRefTable) Size() int { return len(x.Entries) }

// maxXRefChain bounds /Prev chains; incremental saves rarely exceed a few
// dozen sections, so anything past this is a loop or garbage.
const maxXRefChain = 1024

// XRefParser reads cross-reference data: the startxref pointer, classic
// tables, cross-reference streams, and hybrid files carrying both.
type XRefParser struct {
	reader io.ReadSeeker
}

// NewXRefParser returns a parser over r.
func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{reader: r}
}

// FindStartXRef scans the file tail for the "startxref" keyword and returns
// the offset it points at.
func (x *XRefParser) FindStartXRef() (int64, error) {
	fileSize, err := x.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek to end: %w", err)
	}

	readSize := int64(1024)
	if fileSize < readSize {
		readSize = fileSize
	}
	if _, err := x.reader.Seek(fileSize-readSize, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to tail: %w", err)
	}

	buf := make([]byte, readSize)
	n, err := io.ReadFull(x.reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("read tail: %w", err)
	}
	content := string(buf[:n])

	idx := strings.LastIndex(content, "startxref")
	if idx == -1 {
		return 0, fmt.Errorf("startxref not found")
	}
	rest := strings.TrimSpace(content[idx+len("startxref"):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, fmt.Errorf("startxref has no offset")
	}
	offset, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset %q: %w", fields[0], err)
	}
	if offset < 0 || offset >= fileSize {
		return 0, fmt.Errorf("startxref offset %d outside file of %d bytes", offset, fileSize)
	}
	return offset, nil
}

// ParseSection parses the cross-reference section at offset, detecting
// whether it is a classic table or a cross-reference stream.
func (x *XRefParser) ParseSection(offset int64) (*XRefTable, error) {
	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to xref section: %w", err)
	}
	head := make([]byte, 4)
	n, err := io.ReadFull(x.reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read xref section head: %w", err)
	}
	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to xref section: %w", err)
	}

	if strings.HasPrefix(string(head[:n]), "xref") {
		return x.parseClassic()
	}
	return x.parseStreamSection()
}

// LoadAll resolves the whole cross-reference chain starting from the
// startxref pointer and returns the merged table. Newer sections override
// older ones; the hybrid /XRefStm of a classic section overrides that
// section's own entries so compressed objects stay reachable.
func (x *XRefParser) LoadAll() (*XRefTable, error) {
	offset, err := x.FindStartXRef()
	if err != nil {
		return nil, err
	}
	visited := make(map[int64]bool)
	chain, err := x.loadChain(offset, visited)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("empty xref chain")
	}
	return MergeXRefTables(chain...), nil
}

// loadChain returns the sections reachable from offset ordered oldest
// first, so that a later merge lets newer entries win.
func (x *XRefParser) loadChain(offset int64, visited map[int64]bool) ([]*XRefTable, error) {
	if visited[offset] {
		return nil, fmt.Errorf("xref chain loops back to offset %d", offset)
	}
	if len(visited) >= maxXRefChain {
		return nil, fmt.Errorf("xref chain exceeds %d sections", maxXRefChain)
	}
	visited[offset] = true

	table, err := x.ParseSection(offset)
	if err != nil {
		return nil, err
	}

	var chain []*XRefTable
	if prev, ok := table.Trailer.GetInt("Prev"); ok {
		older, err := x.loadChain(int64(prev), visited)
		if err != nil {
			return nil, fmt.Errorf("following /Prev: %w", err)
		}
		chain = append(chain, older...)
	}
	chain = append(chain, table)

	if stmOffset, ok := table.Trailer.GetInt("XRefStm"); ok && !visited[int64(stmOffset)] {
		visited[int64(stmOffset)] = true
		if _, err := x.reader.Seek(int64(stmOffset), io.SeekStart); err == nil {
			if stm, err := x.parseStreamSection(); err == nil {
				chain = append(chain, stm)
			}
		}
	}
	return chain, nil
}

// parseClassic reads a classic "xref" table and its trailer. The reader is
// positioned at the section start.
func (x *XRefParser) parseClassic() (*XRefTable, error) {
	br := bufio.NewReader(x.reader)

	line, err := readXRefLine(br)
	if err != nil {
		return nil, fmt.Errorf("read xref keyword: %w", err)
	}
	if strings.TrimSpace(line) != "xref" {
		return nil, fmt.Errorf("expected 'xref' keyword, got %q", strings.TrimSpace(line))
	}

	table := NewXRefTable()
	for {
		line, err = readXRefLine(br)
		if err != nil {
			return nil, fmt.Errorf("read xref subsection: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "trailer" {
			break
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid subsection header %q", line)
		}
		first, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid first object number %q: %w", fields[0], err)
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid entry count %q: %w", fields[1], err)
		}
		if first < 0 || count < 0 {
			return nil, fmt.Errorf("negative subsection header %q", line)
		}

		for i := 0; i < count; i++ {
			entryLine, err := readXRefLine(br)
			if err != nil {
				return nil, fmt.Errorf("read entry %d of subsection %d %d: %w", i, first, count, err)
			}
			entry, err := parseClassicEntry(entryLine)
			if err != nil {
				return nil, err
			}
			table.Set(first+i, entry)
		}
	}

	// The trailer dictionary follows; parse it with real tokenization so
	// nested dictionaries and odd line breaks cannot confuse us.
	parser := NewParser(br)
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("parse trailer: %w", err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is %T, want dictionary", obj)
	}
	table.Trailer = trailer
	return table, nil
}

// parseClassicEntry decodes one "nnnnnnnnnn ggggg n" line.
func parseClassicEntry(line string) (*XRefEntry, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("malformed xref entry %q", strings.TrimSpace(line))
	}
	offset, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid entry offset %q: %w", fields[0], err)
	}
	generation, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid entry generation %q: %w", fields[1], err)
	}
	var inUse bool
	switch fields[2] {
	case "n":
		inUse = true
	case "f":
		inUse = false
	default:
		return nil, fmt.Errorf("invalid entry flag %q", fields[2])
	}
	return &XRefEntry{Offset: offset, Generation: generation, InUse: inUse}, nil
}

// parseStreamSection reads a /Type /XRef cross-reference stream at the
// current position. Its dictionary doubles as the trailer.
func (x *XRefParser) parseStreamSection() (*XRefTable, error) {
	parser := NewParser(x.reader)
	indirect, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("parse xref stream object: %w", err)
	}
	stream, ok := indirect.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("xref section is %T, want stream", indirect.Object)
	}
	if typ, ok := stream.Dict.GetName("Type"); !ok || typ != "XRef" {
		return nil, fmt.Errorf("xref stream has /Type %v, want /XRef", stream.Dict.Get("Type"))
	}

	data, err := stream.Decoded()
	if err != nil {
		return nil, fmt.Errorf("decode xref stream: %w", err)
	}

	wArr, ok := stream.Dict.GetArray("W")
	if !ok || len(wArr) < 3 {
		return nil, fmt.Errorf("xref stream missing /W")
	}
	var w [3]int
	for i := 0; i < 3; i++ {
		n, ok := wArr.GetInt(i)
		if !ok || n < 0 || n > 8 {
			return nil, fmt.Errorf("invalid /W field width at %d", i)
		}
		w[i] = int(n)
	}
	rowLen := w[0] + w[1] + w[2]
	if rowLen == 0 {
		return nil, fmt.Errorf("xref stream /W is all zeros")
	}

	size, ok := stream.Dict.GetInt("Size")
	if !ok {
		return nil, fmt.Errorf("xref stream missing /Size")
	}

	// /Index defaults to [0 Size].
	index := []int{0, int(size)}
	if idxArr, ok := stream.Dict.GetArray("Index"); ok {
		if len(idxArr)%2 != 0 {
			return nil, fmt.Errorf("xref stream /Index has odd length %d", len(idxArr))
		}
		index = index[:0]
		for i := 0; i < len(idxArr); i++ {
			n, ok := idxArr.GetInt(i)
			if !ok || n < 0 {
				return nil, fmt.Errorf("invalid /Index value at %d", i)
			}
			index = append(index, int(n))
		}
	}

	table := NewXRefTable()
	table.Trailer = stream.Dict

	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+rowLen > len(data) {
				// Short data; keep what we decoded so far.
				return table, nil
			}
			row := data[pos : pos+rowLen]
			pos += rowLen

			entryType := uint64(1) // omitted type field defaults to in-use
			if w[0] > 0 {
				entryType = beUint(row[:w[0]])
			}
			f2 := beUint(row[w[0] : w[0]+w[1]])
			f3 := beUint(row[w[0]+w[1]:])

			objNum := start + j
			switch entryType {
			case 0:
				table.Set(objNum, &XRefEntry{Offset: int64(f2), Generation: int(f3), InUse: false})
			case 1:
				table.Set(objNum, &XRefEntry{Offset: int64(f2), Generation: int(f3), InUse: true})
			case 2:
				table.Set(objNum, &XRefEntry{
					InUse:          true,
					InObjectStream: true,
					StreamNumber:   int(f2),
					StreamIndex:    int(f3),
				})
			default:
				// Unknown types are reserved; ignore the row.
			}
		}
	}
	return table, nil
}

// beUint decodes big-endian bytes; an empty field decodes to zero.
func beUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// readXRefLine reads one line terminated by LF, CRLF, or a lone CR.
func readXRefLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		switch b {
		case '\n':
			return sb.String(), nil
		case '\r':
			if next, err := br.Peek(1); err == nil && next[0] == '\n' {
				br.ReadByte()
			}
			return sb.String(), nil
		default:
			sb.WriteByte(b)
		}
	}
}

// MergeXRefTables merges sections ordered oldest first; later entries and
// trailer keys override earlier ones.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	merged := NewXRefTable()
	for _, table := range tables {
		for objNum, entry := range table.Entries {
			merged.Set(objNum, entry)
		}
		for key, val := range table.Trailer {
			merged.Trailer[key] = val
		}
	}
	return merged
}
