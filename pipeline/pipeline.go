// Package pipeline runs the offline build: parse XML feeds, deduplicate
// near-identical pages by SimHash, build the TF-IDF index, and write
// pages.bin/offsets.bin/index.txt.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/TheLegendMe/zh-doc-search/page"
	"github.com/TheLegendMe/zh-doc-search/pagestore"
	"github.com/TheLegendMe/zh-doc-search/simhash"
	"github.com/TheLegendMe/zh-doc-search/tfidf"
	"github.com/TheLegendMe/zh-doc-search/tokenize"
	"github.com/TheLegendMe/zh-doc-search/util"
)

// Result summarizes one pipeline run.
type Result struct {
	PagesParsed     int
	PagesKept       int
	DuplicatesFound int
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Run parses every XML file under inputDir, deduplicates by SimHash,
// builds the weighted index in parallel, and writes the three output
// artifacts into outputDir.
func Run(inputDir, outputDir string, simhashThreshold int, tokenizer tokenize.Tokenizer) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("pipeline: cannot create output dir: %w", err)
	}

	xmlFiles, err := filepath.Glob(filepath.Join(inputDir, "*.xml"))
	if err != nil {
		return nil, err
	}
	if len(xmlFiles) == 0 {
		return nil, fmt.Errorf("pipeline: no XML files found under %s", inputDir)
	}

	var pages []page.Page
	for _, f := range xmlFiles {
		parsed, err := page.ParseFile(f, openFile)
		if err != nil {
			util.Logger.Warning("[PIPELINE] skipping %s: %v", f, err)
			continue
		}
		pages = append(pages, parsed...)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pipeline: no pages parsed from %d files", len(xmlFiles))
	}

	dedupPages, duplicates := dedupBySimhash(pages, simhashThreshold, tokenizer)
	if len(dedupPages) == 0 {
		return nil, fmt.Errorf("pipeline: no pages survived deduplication")
	}

	docs := make([]tfidf.Document, len(dedupPages))
	for i, p := range dedupPages {
		docs[i] = tfidf.Document{DocID: p.DocID, Text: p.Title + "\n" + p.Description}
	}

	idx := tfidf.NewWeightedIndex(tokenizer)
	if err := idx.BuildParallel(docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("pipeline: index build failed: %w", err)
	}

	pagesPath := filepath.Join(outputDir, "pages.bin")
	offsetsPath := filepath.Join(outputDir, "offsets.bin")
	indexPath := filepath.Join(outputDir, "index.txt")

	w, err := pagestore.NewWriter(pagesPath, offsetsPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: cannot open page store: %w", err)
	}
	for _, p := range dedupPages {
		if err := w.WritePage(p); err != nil {
			w.Close()
			return nil, fmt.Errorf("pipeline: write page failed: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("pipeline: close page store failed: %w", err)
	}

	if err := idx.Save(indexPath); err != nil {
		return nil, fmt.Errorf("pipeline: save index failed: %w", err)
	}

	util.Logger.Info("[PIPELINE] parsed=%d kept=%d duplicates=%d", len(pages), len(dedupPages), duplicates)
	return &Result{PagesParsed: len(pages), PagesKept: len(dedupPages), DuplicatesFound: duplicates}, nil
}

// dedupBySimhash keeps a page iff its simhash signature is farther than
// threshold bits from every signature kept so far. Linear scan, no
// bucketing, matching the source algorithm exactly.
func dedupBySimhash(pages []page.Page, threshold int, tokenizer tokenize.Tokenizer) ([]page.Page, int) {
	kept := make([]page.Page, 0, len(pages))
	signatures := make([]uint64, 0, len(pages))
	duplicates := 0
	for _, p := range pages {
		tokens := tokenizer.Tokenize(p.Title + "\n" + p.Description)
		sig := simhash.Simhash64(tokens)
		dup := false
		for _, existing := range signatures {
			if simhash.Hamming(sig, existing) <= threshold {
				dup = true
				break
			}
		}
		if dup {
			duplicates++
			continue
		}
		kept = append(kept, p)
		signatures = append(signatures, sig)
	}
	return kept, duplicates
}
