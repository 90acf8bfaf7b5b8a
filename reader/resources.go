package reader

import (
	"bytes"
	"fmt"
	"image"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/pages"
	"github.com/unpdf/unpdf/pdferr"
)

// collectPageImages extracts the payloads of a page's image XObjects.
// Images that fail to decode are skipped rather than failing the page;
// their placement blocks still point at the id they would have had.
// pageNum is 1-based and goes into the id.
func (r *Reader) collectPageImages(pageNum int, images []pageImage) []model.Resource {
	var out []model.Resource
	for _, img := range images {
		rsc, err := r.imageResource(fmt.Sprintf("page%d_%s", pageNum, img.name), img.stream)
		if err != nil {
			r.log.WithError(err).WithField("image", img.name).Debug("image skipped")
			continue
		}
		out = append(out, rsc)
	}
	return out
}

// imageResource builds one image resource from its XObject stream. JPEG
// and JPEG 2000 payloads pass through undecoded under their own MIME
// types; everything else is decoded and identified by magic bytes, with
// raw sample data falling back to application/octet-stream.
func (r *Reader) imageResource(id string, stream *core.Stream) (model.Resource, error) {
	dict := stream.Dict
	rsc := model.Resource{
		ID:               id,
		Kind:             model.ResourceImage,
		BitsPerComponent: 8,
	}
	if w, ok := dict.GetInt("Width"); ok {
		rsc.Width = int(w)
	}
	if h, ok := dict.GetInt("Height"); ok {
		rsc.Height = int(h)
	}
	if bpc, ok := dict.GetInt("BitsPerComponent"); ok {
		rsc.BitsPerComponent = int(bpc)
	}
	if cs := dict.Get("ColorSpace"); cs != nil {
		rsc.ColorSpace = r.colorSpaceName(cs)
	}

	data, err := stream.Decoded()
	if err != nil {
		return model.Resource{}, pdferr.ImageExtract(err, id)
	}
	if err := r.checkStreamLimit(len(data)); err != nil {
		return model.Resource{}, err
	}
	rsc.Data = data

	switch lastFilter(stream.FilterNames()) {
	case "DCTDecode", "DCT":
		rsc.MIME = "image/jpeg"
	case "JPXDecode":
		rsc.MIME = "image/jp2"
	default:
		rsc.MIME = sniffMIME(data)
	}
	return rsc, nil
}

// colorSpaceName normalizes a color space entry to a family name. Indexed
// spaces report their base; ICCBased streams map their component count
// onto the matching device space.
func (r *Reader) colorSpaceName(obj core.Object) string {
	resolved, err := r.resolver.Resolve(obj)
	if err != nil {
		return ""
	}
	switch v := resolved.(type) {
	case core.Name:
		return string(v)
	case core.Array:
		if len(v) == 0 {
			return ""
		}
		name, ok := v[0].(core.Name)
		if !ok {
			return ""
		}
		switch name {
		case "Indexed":
			if len(v) > 1 {
				return r.colorSpaceName(v[1])
			}
		case "ICCBased":
			if len(v) > 1 {
				if stream, err := r.resolver.ResolveStream(v[1]); err == nil {
					switch n, _ := stream.Dict.GetInt("N"); n {
					case 1:
						return "DeviceGray"
					case 3:
						return "DeviceRGB"
					case 4:
						return "DeviceCMYK"
					}
				}
			}
		}
		return string(name)
	}
	return ""
}

// collectAttachments walks the catalog's /Names /EmbeddedFiles name tree
// and stores each embedded file as attach_{n} in tree order.
func (r *Reader) collectAttachments(cat *pages.Catalog) []model.Resource {
	names, err := cat.Names()
	if err != nil || names == nil {
		return nil
	}
	embObj := names.Get("EmbeddedFiles")
	if embObj == nil {
		return nil
	}
	root, err := r.resolver.ResolveDict(embObj)
	if err != nil {
		r.log.WithError(err).Debug("embedded files tree unreadable")
		return nil
	}

	var out []model.Resource
	r.walkNameTree(root, 0, func(value core.Object) {
		if rsc, ok := r.attachmentResource(value, len(out)); ok {
			out = append(out, rsc)
		}
	})
	return out
}

// walkNameTree visits a name tree's values in order: /Names pairs at the
// leaves, /Kids recursion through interior nodes.
func (r *Reader) walkNameTree(node core.Dict, depth int, visit func(core.Object)) {
	if max := r.cfg.Limits.MaxDepth; max > 0 && depth > max {
		return
	}
	if obj := node.Get("Names"); obj != nil {
		if pairs, err := r.resolver.ResolveArray(obj); err == nil {
			for i := 1; i < len(pairs); i += 2 {
				visit(pairs[i])
			}
		}
	}
	if obj := node.Get("Kids"); obj != nil {
		kids, err := r.resolver.ResolveArray(obj)
		if err != nil {
			return
		}
		for _, kid := range kids {
			child, err := r.resolver.ResolveDict(kid)
			if err != nil {
				continue
			}
			r.walkNameTree(child, depth+1, visit)
		}
	}
}

// attachmentResource builds one attachment from a file specification
// dictionary: filename from /UF (unicode) falling back to /F, payload
// from the /EF embedded file stream.
func (r *Reader) attachmentResource(value core.Object, n int) (model.Resource, bool) {
	spec, err := r.resolver.ResolveDict(value)
	if err != nil {
		return model.Resource{}, false
	}

	rsc := model.Resource{
		ID:   fmt.Sprintf("attach_%d", n),
		Kind: model.ResourceAttachment,
	}
	if s, ok := spec.GetString("UF"); ok {
		rsc.Filename = decodeTextString([]byte(s))
	} else if s, ok := spec.GetString("F"); ok {
		rsc.Filename = decodeTextString([]byte(s))
	}

	ef := spec.Get("EF")
	if ef == nil {
		return model.Resource{}, false
	}
	efDict, err := r.resolver.ResolveDict(ef)
	if err != nil {
		return model.Resource{}, false
	}
	fileObj := efDict.Get("F")
	if fileObj == nil {
		fileObj = efDict.Get("UF")
	}
	stream, err := r.resolver.ResolveStream(fileObj)
	if err != nil {
		return model.Resource{}, false
	}
	data, err := stream.Decoded()
	if err != nil {
		r.log.WithError(err).WithField("attachment", rsc.Filename).Debug("attachment skipped")
		return model.Resource{}, false
	}
	if err := r.checkStreamLimit(len(data)); err != nil {
		return model.Resource{}, false
	}
	rsc.Data = data

	if sub, ok := stream.Dict.GetName("Subtype"); ok && strings.Contains(string(sub), "/") {
		rsc.MIME = string(sub)
	} else {
		rsc.MIME = sniffMIME(data)
	}
	if strings.HasPrefix(rsc.MIME, "image/") {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			rsc.Width, rsc.Height = cfg.Width, cfg.Height
		}
	}
	return rsc, true
}

// collectFonts stores the embedded font programs of the given pages as
// font_{n}. A program shared between pages is stored once; dedup is by
// the object number of the font file stream.
func (r *Reader) collectFonts(pageList []*pages.Page) []model.Resource {
	var out []model.Resource
	seen := make(map[int]bool)

	for _, page := range pageList {
		resources := page.Resources()
		if resources == nil {
			continue
		}
		fontsObj := resources.Get("Font")
		if fontsObj == nil {
			continue
		}
		fontDict, err := r.resolver.ResolveDict(fontsObj)
		if err != nil {
			continue
		}

		names := fontDict.Keys()
		sort.Strings(names)
		for _, name := range names {
			fd, err := r.resolver.ResolveDict(fontDict.Get(name))
			if err != nil {
				continue
			}
			desc := r.fontDescriptor(fd)
			if desc == nil {
				continue
			}
			for _, key := range [...]string{"FontFile", "FontFile2", "FontFile3"} {
				obj := desc.Get(key)
				if obj == nil {
					continue
				}
				if ref, ok := obj.(core.IndirectRef); ok {
					if seen[ref.Number] {
						continue
					}
					seen[ref.Number] = true
				}
				stream, err := r.resolver.ResolveStream(obj)
				if err != nil {
					continue
				}
				data, err := stream.Decoded()
				if err != nil {
					continue
				}
				if err := r.checkStreamLimit(len(data)); err != nil {
					continue
				}
				out = append(out, model.Resource{
					ID:   fmt.Sprintf("font_%d", len(out)),
					Kind: model.ResourceFont,
					MIME: fontMIME(key),
					Data: data,
				})
			}
		}
	}
	return out
}

// fontDescriptor finds the descriptor for a font dictionary, stepping
// through the descendant for composite Type0 fonts.
func (r *Reader) fontDescriptor(fd core.Dict) core.Dict {
	if obj := fd.Get("FontDescriptor"); obj != nil {
		if desc, err := r.resolver.ResolveDict(obj); err == nil {
			return desc
		}
		return nil
	}
	desc, err := r.resolver.ResolveArray(fd.Get("DescendantFonts"))
	if err != nil || len(desc) == 0 {
		return nil
	}
	child, err := r.resolver.ResolveDict(desc[0])
	if err != nil {
		return nil
	}
	if obj := child.Get("FontDescriptor"); obj != nil {
		if d, err := r.resolver.ResolveDict(obj); err == nil {
			return d
		}
	}
	return nil
}

// fontMIME maps the descriptor key carrying the program to its type:
// FontFile is Type 1, FontFile2 TrueType, FontFile3 CFF/OpenType.
func fontMIME(key string) string {
	switch key {
	case "FontFile2":
		return "font/ttf"
	case "FontFile3":
		return "font/otf"
	default:
		return "application/x-font-type1"
	}
}

// lastFilter returns the final name in a filter chain, the one that
// determines the format of the stored bytes.
func lastFilter(filters []string) string {
	if len(filters) == 0 {
		return ""
	}
	return filters[len(filters)-1]
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// sniffMIME identifies common image containers by their magic bytes.
// Unrecognized data, including raw sample arrays from Flate-compressed
// images, reports application/octet-stream.
func sniffMIME(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], pngMagic):
		return "image/png"
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("GIF8")):
		return "image/gif"
	case len(data) >= 4 && (bytes.Equal(data[:4], []byte("II*\x00")) || bytes.Equal(data[:4], []byte("MM\x00*"))):
		return "image/tiff"
	case len(data) >= 14 && data[0] == 'B' && data[1] == 'M':
		return "image/bmp"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	case len(data) >= 12 && bytes.Equal(data[4:12], []byte("jP  \x0D\x0A\x87\x0A")):
		return "image/jp2"
	case len(data) >= 4 && data[0] == 0xFF && data[1] == 0x4F && data[2] == 0xFF && data[3] == 0x51:
		return "image/jp2"
	default:
		return "application/octet-stream"
	}
}
