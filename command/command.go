// Package command implements the CLI's closed command dispatch: a tagged
// switch over a fixed set of operations rather than an open plugin
// interface, since the command set never grows at runtime.
package command

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TheLegendMe/zh-doc-search/cache"
	"github.com/TheLegendMe/zh-doc-search/config"
	"github.com/TheLegendMe/zh-doc-search/keyword"
	"github.com/TheLegendMe/zh-doc-search/pagestore"
	"github.com/TheLegendMe/zh-doc-search/pipeline"
	"github.com/TheLegendMe/zh-doc-search/search"
	"github.com/TheLegendMe/zh-doc-search/tfidf"
	"github.com/TheLegendMe/zh-doc-search/tokenize"
	"github.com/TheLegendMe/zh-doc-search/util"
)

// Handler runs one CLI command against cfg and its remaining positional
// args, printing its own output and returning a process exit code.
type Handler func(cfg *config.AppConfig, args []string) int

// Dispatch resolves name to its Handler. The set is closed: four commands,
// no plugin registration.
func Dispatch(name string) (Handler, bool) {
	switch name {
	case "--build-index":
		return BuildIndex, true
	case "--build-keywords":
		return BuildKeywordDict, true
	case "--query":
		return Query, true
	case "--recommend":
		return Recommend, true
	default:
		return nil, false
	}
}

func newTokenizer(cfg *config.AppConfig) tokenize.Tokenizer {
	return tokenize.NewGseTokenizer(cfg.DictDir)
}

func BuildIndex(cfg *config.AppConfig, _ []string) int {
	result, err := pipeline.Run(cfg.InputDir, cfg.OutputDir, cfg.SimhashThreshold, newTokenizer(cfg))
	if err != nil {
		util.Logger.Error("build-index failed: %v", err)
		return 1
	}
	util.Logger.Info("build-index done: parsed=%d kept=%d duplicates=%d",
		result.PagesParsed, result.PagesKept, result.DuplicatesFound)
	return 0
}

func BuildKeywordDict(cfg *config.AppConfig, _ []string) int {
	source := cfg.CandidatesFile
	dict, err := keyword.Build(source, newTokenizer(cfg))
	if err != nil {
		util.Logger.Error("build-keywords failed: %v", err)
		return 1
	}
	dictPath, indexPath, err := dict.Write(cfg.KeywordOutputDir)
	if err != nil {
		util.Logger.Error("build-keywords write failed: %v", err)
		return 1
	}
	util.Logger.Info("build-keywords done: words=%d dict=%s index=%s", len(dict.Words), dictPath, indexPath)
	return 0
}

// parseTopK pops a trailing numeric positional arg off terms if it parses
// as a positive integer, else returns defaultValue unchanged.
func parseTopK(args []string, defaultValue int) ([]string, int) {
	if len(args) == 0 {
		return args, defaultValue
	}
	last := args[len(args)-1]
	n, err := strconv.Atoi(last)
	if err != nil || n <= 0 {
		return args, defaultValue
	}
	return args[:len(args)-1], n
}

func Query(cfg *config.AppConfig, args []string) int {
	terms, topK := parseTopK(args, cfg.DefaultTopK)
	if len(terms) == 0 {
		fmt.Println("[]")
		return 0
	}

	store := pagestore.Open(cfg.IndexDir + "/pages.bin")
	if err := store.LoadOffsets(cfg.IndexDir + "/offsets.bin"); err != nil {
		util.Logger.Error("failed to load offsets: %v", err)
		return 1
	}

	idx := tfidf.NewWeightedIndex(newTokenizer(cfg))
	if err := idx.Load(cfg.IndexDir+"/index.txt", store.Count()); err != nil {
		util.Logger.Error("failed to load index: %v", err)
		return 1
	}

	var c *cache.Cache
	if cfg.EnableCache {
		c = cache.New(cfg.CacheCapacity, cfg.RedisHost, cfg.RedisPort, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}

	engine := search.NewEngine(idx, nil, store, c)
	results := engine.QueryRanked(context.Background(), lowerAll(terms), topK)

	out, err := json.Marshal(results)
	if err != nil {
		util.Logger.Error("failed to marshal results: %v", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

func Recommend(cfg *config.AppConfig, args []string) int {
	input, topK := parseTopK(args, cfg.RecommendTopK)
	if len(input) == 0 {
		fmt.Println("[]")
		return 0
	}
	query := strings.ToLower(strings.Join(input, ""))

	dictPath := cfg.KeywordDictDir + "/keyword_dict.txt"
	words, freqs, err := loadKeywordDict(dictPath)
	if err != nil {
		util.Logger.Error("failed to load keyword dict: %v", err)
		return 1
	}

	suggestions := keyword.Recommend(query, words, freqs, topK)
	out, err := json.Marshal(suggestions)
	if err != nil {
		util.Logger.Error("failed to marshal suggestions: %v", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}

// loadKeywordDict reads a keyword_dict.txt file written by Dict.Write
// ("word freq" per line) back into parallel word/frequency slices.
func loadKeywordDict(path string) ([]string, []uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var words []string
	var freqs []uint32
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		freq, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			continue
		}
		words = append(words, parts[0])
		freqs = append(freqs, uint32(freq))
	}
	return words, freqs, scanner.Err()
}
