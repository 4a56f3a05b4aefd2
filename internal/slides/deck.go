// Package slides renders simple title-and-bullets decks as PowerPoint
// (PresentationML) files.
package slides

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// ContentType is the MIME type of a rendered deck.
const ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Slide is one outline entry.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// Cover is the first slide of a deck.
type Cover struct {
	Title    string
	Subtitle string
	Footer   string
}

// ProposalCover returns the cover used for discovery proposals.
func ProposalCover(generated time.Time) Cover {
	return Cover{
		Title:    "Discovery Proposal",
		Subtitle: "Generated: " + generated.Format("2006-01-02"),
		Footer:   "Virtual Meetings Assistant",
	}
}

type part struct {
	name string
	tmpl *template.Template
	data any
}

// Render writes a deck with the cover followed by one slide per entry.
func Render(cover Cover, deck []Slide) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	total := len(deck) + 1
	files := []part{
		{"[Content_Types].xml", contentTypesTmpl, total},
		{"_rels/.rels", rootRelsTmpl, nil},
		{"docProps/app.xml", appTmpl, total},
		{"docProps/core.xml", coreTmpl, cover.Title},
		{"ppt/presentation.xml", presentationTmpl, total},
		{"ppt/_rels/presentation.xml.rels", presentationRelsTmpl, total},
		{"ppt/slideMasters/slideMaster1.xml", masterTmpl, nil},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", masterRelsTmpl, nil},
		{"ppt/slideLayouts/slideLayout1.xml", layoutTmpl, nil},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", layoutRelsTmpl, nil},
		{"ppt/theme/theme1.xml", themeTmpl, nil},
		{"ppt/slides/slide1.xml", coverTmpl, cover},
		{"ppt/slides/_rels/slide1.xml.rels", slideRelsTmpl, nil},
	}
	for i, s := range deck {
		n := i + 2
		files = append(files,
			part{fmt.Sprintf("ppt/slides/slide%d.xml", n), slideTmpl, s},
			part{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slideRelsTmpl, nil},
		)
	}

	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", f.name, err)
		}
		if err := f.tmpl.Execute(w, f.data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", f.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize deck: %w", err)
	}
	return buf.Bytes(), nil
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// seq yields from..to inclusive.
func seq(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
