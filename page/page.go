// Package page parses the XML document feed and provides the XML-escape
// and whitespace sanitization helpers shared with the page store writer.
package page

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Page is a single parsed document.
type Page struct {
	DocID       int32
	Link        string
	Title       string
	Description string
}

type xmlDoc struct {
	DocID       int32  `xml:"docid"`
	Link        string `xml:"link"`
	Title       string `xml:"title"`
	Description string `xml:"description"`
}

// ParseError wraps an XML structural failure for a single input file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFile streams a <docs><doc>...</doc>...</docs> feed, decoding one
// <doc> element at a time so a single large file never forces the whole
// document into memory. Pages with both Title and Description empty are
// dropped.
func ParseFile(path string, open func(string) (io.ReadCloser, error)) ([]Page, error) {
	r, err := open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer r.Close()

	dec := xml.NewDecoder(r)
	var pages []Page
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "doc" {
			continue
		}
		var doc xmlDoc
		if err := dec.DecodeElement(&doc, &start); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		p := Page{
			DocID:       doc.DocID,
			Link:        strings.TrimSpace(doc.Link),
			Title:       strings.TrimSpace(doc.Title),
			Description: strings.TrimSpace(doc.Description),
		}
		if p.Title == "" && p.Description == "" {
			continue
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// EscapeAndSanitize XML-escapes s and collapses whitespace (tabs/newlines
// become spaces, runs of spaces collapse to one) so it is safe to embed as
// the text content of a pages.bin element.
func EscapeAndSanitize(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(collapseWhitespace(s)))
	return sb.String()
}

func collapseWhitespace(s string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || r == ' ' {
			if !prevSpace {
				sb.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}
