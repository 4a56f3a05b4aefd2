package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	wordNamespace    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	drawingNamespace = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

var slideEntry = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Decompressed size limits for archive-based formats.
var (
	maxEntrySize   int64 = 32 << 20
	maxArchiveSize int64 = 128 << 20
)

var errEntryTooLarge = errors.New("archive entry exceeds size limit")

func openZip(data []byte) (*zip.Reader, error) {
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}

// entryReader reads archive entries within a total decompressed budget.
type entryReader struct {
	remaining int64
}

func newEntryReader() *entryReader {
	return &entryReader{remaining: maxArchiveSize}
}

func (r *entryReader) read(f *zip.File) ([]byte, error) {
	limit := min(maxEntrySize, r.remaining)
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%s: %w", f.Name, errEntryTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", f.Name, errEntryTooLarge)
	}
	r.remaining -= int64(len(data))
	return data, nil
}

// extractDOCX returns the text of word/document.xml, one paragraph per line.
func extractDOCX(data []byte) (string, error) {
	zr, err := openZip(data)
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		raw, err := newEntryReader().read(f)
		if err != nil {
			return "", err
		}
		paragraphs, err := wordParagraphs(raw)
		if err != nil {
			return "", err
		}
		return strings.Join(paragraphs, "\n"), nil
	}
	return "", errors.New("word/document.xml not found")
}

func wordParagraphs(raw []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br":
				current.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

type slideFile struct {
	n    int
	file *zip.File
}

// extractPPTX reads ppt/slides/slideN.xml in ascending N and joins every
// text run with a single space.
func extractPPTX(data []byte) (string, error) {
	zr, err := openZip(data)
	if err != nil {
		return "", err
	}

	var slides []slideFile
	for _, f := range zr.File {
		m := slideEntry.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("slide entry %s: %w", f.Name, err)
		}
		slides = append(slides, slideFile{n: n, file: f})
	}
	if len(slides) == 0 {
		return "", errors.New("no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	entries := newEntryReader()
	var runs []string
	for _, s := range slides {
		raw, err := entries.read(s.file)
		if err != nil {
			return "", err
		}
		slideRuns, err := drawingRuns(raw)
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", s.n, err)
		}
		runs = append(runs, slideRuns...)
	}
	return strings.Join(runs, " "), nil
}

func drawingRuns(raw []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		runs   []string
		inText bool
		run    strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == drawingNamespace && t.Name.Local == "t" {
				inText = true
				run.Reset()
			}
		case xml.EndElement:
			if t.Name.Space == drawingNamespace && t.Name.Local == "t" {
				inText = false
				if run.Len() > 0 {
					runs = append(runs, run.String())
				}
			}
		case xml.CharData:
			if inText {
				run.Write(t)
			}
		}
	}
	return runs, nil
}
