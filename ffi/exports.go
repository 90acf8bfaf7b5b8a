package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

// Thread-local diagnostics slot, defined in lasterror.c. A file with
// //export directives may only declare C symbols in its preamble.
extern void unpdf_err_store(char *msg);
extern const char *unpdf_err_read(void);
*/
import "C"

import (
	"unsafe"

	"github.com/unpdf/unpdf"
	"github.com/unpdf/unpdf/internal/handles"
)

// setLastError records err in the calling thread's slot, or clears the
// slot when err is nil. Every export calls it on both paths, so a stale
// message never outlives a successful call.
func setLastError(err error) {
	if err == nil {
		C.unpdf_err_store(nil)
		return
	}
	C.unpdf_err_store(C.CString(err.Error()))
}

// versionC is process-static; callers must not free it.
var versionC = C.CString(unpdf.Version)

//export unpdf_version
func unpdf_version() *C.char {
	return versionC
}

//export unpdf_last_error
func unpdf_last_error() *C.char {
	return (*C.char)(C.unpdf_err_read())
}

//export unpdf_parse_file
func unpdf_parse_file(path *C.char) C.uint64_t {
	if path == nil {
		setLastError(errNullPath)
		return 0
	}
	h, err := parseFileHandle(C.GoString(path))
	setLastError(err)
	return C.uint64_t(h)
}

//export unpdf_parse_bytes
func unpdf_parse_bytes(data unsafe.Pointer, length C.size_t) C.uint64_t {
	if data == nil || length == 0 {
		setLastError(errEmptyBuffer)
		return 0
	}
	h, err := parseBytesHandle(C.GoBytes(data, C.int(length)))
	setLastError(err)
	return C.uint64_t(h)
}

//export unpdf_free_document
func unpdf_free_document(h C.uint64_t) {
	freeDocument(handles.Handle(h))
}

//export unpdf_to_markdown
func unpdf_to_markdown(h C.uint64_t, flags C.uint32_t) *C.char {
	s, err := toMarkdown(handles.Handle(h), uint32(flags))
	setLastError(err)
	if err != nil {
		return nil
	}
	return C.CString(s)
}

//export unpdf_to_text
func unpdf_to_text(h C.uint64_t) *C.char {
	s, err := toText(handles.Handle(h))
	setLastError(err)
	if err != nil {
		return nil
	}
	return C.CString(s)
}

//export unpdf_to_json
func unpdf_to_json(h C.uint64_t, format C.int32_t) *C.char {
	s, err := toJSON(handles.Handle(h), int32(format))
	setLastError(err)
	if err != nil {
		return nil
	}
	return C.CString(s)
}

//export unpdf_section_count
func unpdf_section_count(h C.uint64_t) C.int32_t {
	n, err := sectionCount(handles.Handle(h))
	setLastError(err)
	return C.int32_t(n)
}

//export unpdf_resource_count
func unpdf_resource_count(h C.uint64_t) C.int32_t {
	n, err := resourceCount(handles.Handle(h))
	setLastError(err)
	return C.int32_t(n)
}

//export unpdf_get_title
func unpdf_get_title(h C.uint64_t) *C.char {
	title, err := getTitle(handles.Handle(h))
	setLastError(err)
	if err != nil || title == nil {
		return nil // NULL with a clear error slot means "field absent"
	}
	return C.CString(*title)
}

//export unpdf_get_author
func unpdf_get_author(h C.uint64_t) *C.char {
	author, err := getAuthor(handles.Handle(h))
	setLastError(err)
	if err != nil || author == nil {
		return nil
	}
	return C.CString(*author)
}

//export unpdf_get_info
func unpdf_get_info(h C.uint64_t) *C.char {
	s, err := getInfo(handles.Handle(h))
	setLastError(err)
	if err != nil {
		return nil
	}
	return C.CString(s)
}

//export unpdf_get_resource_ids
func unpdf_get_resource_ids(h C.uint64_t) *C.char {
	s, err := getResourceIDs(handles.Handle(h))
	setLastError(err)
	if err != nil {
		return nil
	}
	return C.CString(s)
}

//export unpdf_get_resource_info
func unpdf_get_resource_info(h C.uint64_t, id *C.char) *C.char {
	if id == nil {
		setLastError(errNullID)
		return nil
	}
	s, err := getResourceInfo(handles.Handle(h), C.GoString(id))
	setLastError(err)
	if err != nil {
		return nil
	}
	return C.CString(s)
}

//export unpdf_get_resource_data
func unpdf_get_resource_data(h C.uint64_t, id *C.char, outLen *C.size_t) unsafe.Pointer {
	if id == nil || outLen == nil {
		setLastError(errNullID)
		return nil
	}
	data, err := getResourceData(handles.Handle(h), C.GoString(id))
	setLastError(err)
	if err != nil {
		return nil
	}
	*outLen = C.size_t(len(data))
	if len(data) == 0 {
		// Still an owned allocation: the caller frees it like any other.
		return C.malloc(1)
	}
	return C.CBytes(data)
}

//export unpdf_free_string
func unpdf_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

//export unpdf_free_bytes
func unpdf_free_bytes(p unsafe.Pointer) {
	if p != nil {
		C.free(p)
	}
}

//export unpdf_is_pdf
func unpdf_is_pdf(path *C.char) C.bool {
	if path == nil {
		setLastError(errNullPath)
		return false
	}
	ok := isPDF(C.GoString(path))
	setLastError(nil)
	return C.bool(ok)
}

//export unpdf_get_page_count
func unpdf_get_page_count(path *C.char) C.int32_t {
	if path == nil {
		setLastError(errNullPath)
		return -1
	}
	n, err := getPageCount(C.GoString(path))
	setLastError(err)
	return C.int32_t(n)
}
