package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/pdferr"
)

// The JSON schema is fixed: metadata with absent fields omitted, sections
// with index, derived text and referenced resource ids, resource
// summaries without payload bytes, and the outline when the document has
// one. Pretty and compact output differ in whitespace only.

type jsonDocument struct {
	Metadata  jsonMetadata   `json:"metadata"`
	Sections  []jsonSection  `json:"sections"`
	Resources []jsonResource `json:"resources"`
	Outline   []jsonOutline  `json:"outline,omitempty"`
}

type jsonMetadata struct {
	Title      *string `json:"title,omitempty"`
	Author     *string `json:"author,omitempty"`
	Subject    *string `json:"subject,omitempty"`
	Keywords   *string `json:"keywords,omitempty"`
	Creator    *string `json:"creator,omitempty"`
	Producer   *string `json:"producer,omitempty"`
	Created    *string `json:"created,omitempty"`
	Modified   *string `json:"modified,omitempty"`
	PDFVersion string  `json:"pdf_version"`
	PageCount  int     `json:"page_count"`
	Encrypted  bool    `json:"encrypted"`
}

type jsonSection struct {
	Index     int      `json:"index"`
	Text      string   `json:"text"`
	Resources []string `json:"resources,omitempty"`
}

type jsonResource struct {
	ID               string `json:"id"`
	Kind             string `json:"kind"`
	MIME             string `json:"mime_type"`
	Length           int    `json:"length"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	ColorSpace       string `json:"color_space,omitempty"`
	BitsPerComponent int    `json:"bits_per_component,omitempty"`
	Filename         string `json:"filename,omitempty"`
}

type jsonOutline struct {
	Title    string        `json:"title"`
	Page     int           `json:"page"`
	Level    int           `json:"level"`
	Children []jsonOutline `json:"children,omitempty"`
}

// JSON renders the whole document in the given format.
func JSON(doc *model.Document, format Format) (string, error) {
	return marshal(buildJSONDocument(doc), format)
}

// WriteJSON renders the document as JSON to w.
func WriteJSON(w io.Writer, doc *model.Document, format Format) error {
	s, err := JSON(doc, format)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return pdferr.Render(err)
	}
	return nil
}

// InfoJSON renders the metadata record alone, pretty-printed.
func InfoJSON(doc *model.Document) (string, error) {
	return marshal(buildJSONMetadata(&doc.Metadata), Pretty)
}

// ResourceJSON renders one resource summary, pretty-printed. The payload
// bytes stay out; Length reports them.
func ResourceJSON(res *model.Resource) (string, error) {
	return marshal(buildJSONResource(res), Pretty)
}

// ResourceIDsJSON renders the document's resource ids as a JSON array in
// their stable listing order.
func ResourceIDsJSON(doc *model.Document) (string, error) {
	ids := doc.ResourceIDs()
	if ids == nil {
		ids = []string{}
	}
	return marshal(ids, Compact)
}

func marshal(v any, format Format) (string, error) {
	var (
		out []byte
		err error
	)
	if format == Compact {
		out, err = json.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return "", pdferr.Render(err)
	}
	return string(out), nil
}

func buildJSONDocument(doc *model.Document) jsonDocument {
	out := jsonDocument{
		Metadata:  buildJSONMetadata(&doc.Metadata),
		Sections:  make([]jsonSection, len(doc.Sections)),
		Resources: make([]jsonResource, len(doc.Resources)),
	}
	for i := range doc.Sections {
		s := &doc.Sections[i]
		out.Sections[i] = jsonSection{
			Index:     s.Index,
			Text:      s.Text(),
			Resources: s.Resources,
		}
	}
	for i := range doc.Resources {
		out.Resources[i] = buildJSONResource(&doc.Resources[i])
	}
	out.Outline = buildJSONOutline(doc.Outline)
	return out
}

func buildJSONMetadata(meta *model.Metadata) jsonMetadata {
	return jsonMetadata{
		Title:      meta.Title,
		Author:     meta.Author,
		Subject:    meta.Subject,
		Keywords:   meta.Keywords,
		Creator:    meta.Creator,
		Producer:   meta.Producer,
		Created:    formatTime(meta.Created),
		Modified:   formatTime(meta.Modified),
		PDFVersion: meta.PDFVersion,
		PageCount:  meta.PageCount,
		Encrypted:  meta.Encrypted,
	}
}

func buildJSONResource(res *model.Resource) jsonResource {
	return jsonResource{
		ID:               res.ID,
		Kind:             res.Kind.String(),
		MIME:             res.MIME,
		Length:           len(res.Data),
		Width:            res.Width,
		Height:           res.Height,
		ColorSpace:       res.ColorSpace,
		BitsPerComponent: res.BitsPerComponent,
		Filename:         res.Filename,
	}
}

func buildJSONOutline(items []model.OutlineItem) []jsonOutline {
	if len(items) == 0 {
		return nil
	}
	out := make([]jsonOutline, len(items))
	for i, item := range items {
		out[i] = jsonOutline{
			Title:    item.Title,
			Page:     item.Page,
			Level:    item.Level,
			Children: buildJSONOutline(item.Children),
		}
	}
	return out
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
