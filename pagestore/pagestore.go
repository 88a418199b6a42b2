// Package pagestore implements the append-only page block store and its
// offset directory: a writer used by the offline pipeline and a
// seek-and-extract reader used by the online search engine.
package pagestore

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/TheLegendMe/zh-doc-search/page"
)

// Writer appends page blocks to pages.bin and records their offsets to
// offsets.bin as it goes.
type Writer struct {
	pagesFile   *os.File
	offsetsFile *os.File
	pagesW      *bufio.Writer
	offsetsW    *bufio.Writer
	offset      int64
}

func NewWriter(pagesPath, offsetsPath string) (*Writer, error) {
	pf, err := os.Create(pagesPath)
	if err != nil {
		return nil, err
	}
	of, err := os.Create(offsetsPath)
	if err != nil {
		pf.Close()
		return nil, err
	}
	return &Writer{
		pagesFile:   pf,
		offsetsFile: of,
		pagesW:      bufio.NewWriter(pf),
		offsetsW:    bufio.NewWriter(of),
	}, nil
}

// WritePage appends one <doc> block for p and records its starting offset.
func (w *Writer) WritePage(p page.Page) error {
	if _, err := fmt.Fprintf(w.offsetsW, "%d\t%d\n", p.DocID, w.offset); err != nil {
		return err
	}
	block := fmt.Sprintf(
		"<doc>\n<docid>%d</docid>\n<title>%s</title>\n<link>%s</link>\n<description>%s</description>\n</doc>\n",
		p.DocID,
		page.EscapeAndSanitize(p.Title),
		page.EscapeAndSanitize(p.Link),
		page.EscapeAndSanitize(p.Description),
	)
	n, err := w.pagesW.WriteString(block)
	w.offset += int64(n)
	return err
}

func (w *Writer) Close() error {
	if err := w.pagesW.Flush(); err != nil {
		return err
	}
	if err := w.offsetsW.Flush(); err != nil {
		return err
	}
	if err := w.pagesFile.Close(); err != nil {
		return err
	}
	return w.offsetsFile.Close()
}

// RawPage is a page block as read back: title/link/description are the raw
// tag contents, NOT XML-unescaped. This mirrors the minimal extraction the
// engine has always done and must be preserved.
type RawPage struct {
	Title       string
	Link        string
	Description string
}

// Store is the read side: an offset directory plus the path of the
// underlying pages.bin file, which is opened and seeked into on each lookup.
type Store struct {
	pagesPath      string
	docIDToOffset  map[int32]int64
}

func Open(pagesPath string) *Store {
	return &Store{pagesPath: pagesPath, docIDToOffset: make(map[int32]int64)}
}

// LoadOffsets reads offsets.bin (docid<TAB>offset per line) into memory.
func (s *Store) LoadOffsets(offsetsPath string) error {
	f, err := os.Open(offsetsPath)
	if err != nil {
		return err
	}
	defer f.Close()

	s.docIDToOffset = make(map[int32]int64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		id, err1 := strconv.ParseInt(parts[0], 10, 32)
		off, err2 := strconv.ParseInt(parts[1], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		s.docIDToOffset[int32(id)] = off
	}
	return scanner.Err()
}

// Count returns the number of documents recorded in the loaded offset
// directory.
func (s *Store) Count() int {
	return len(s.docIDToOffset)
}

// ReadByDocID seeks to the recorded offset for docid and extracts its page
// block's tag contents.
func (s *Store) ReadByDocID(docid int32) (RawPage, bool) {
	off, ok := s.docIDToOffset[docid]
	if !ok {
		return RawPage{}, false
	}
	return s.ReadByOffset(off)
}

func (s *Store) ReadByOffset(offset int64) (RawPage, bool) {
	f, err := os.Open(s.pagesPath)
	if err != nil {
		return RawPage{}, false
	}
	defer f.Close()
	if _, err := f.Seek(offset, 0); err != nil {
		return RawPage{}, false
	}

	var block strings.Builder
	scanner := bufio.NewScanner(f)
	found := false
	for scanner.Scan() {
		line := scanner.Text()
		block.WriteString(line)
		block.WriteByte('\n')
		if line == "</doc>" {
			found = true
			break
		}
	}
	if !found || block.Len() == 0 {
		return RawPage{}, false
	}
	text := block.String()
	title, _ := extractTag(text, "title")
	link, _ := extractTag(text, "link")
	description, _ := extractTag(text, "description")
	return RawPage{Title: title, Link: link, Description: description}, true
}

// extractTag returns the first-occurrence substring between <tag> and
// </tag>. Deliberately not XML-unescaped.
func extractTag(xmlBlock, tag string) (string, bool) {
	open := "<" + tag + ">"
	closeTag := "</" + tag + ">"
	p1 := strings.Index(xmlBlock, open)
	if p1 < 0 {
		return "", false
	}
	p1 += len(open)
	p2 := strings.Index(xmlBlock[p1:], closeTag)
	if p2 < 0 {
		return "", false
	}
	return xmlBlock[p1 : p1+p2], true
}
