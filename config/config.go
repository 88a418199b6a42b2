package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds every knob recognized by the pipeline, the search engine
// and the CLI commands. Fields have working defaults so a missing config
// file is never an error.
type AppConfig struct {
	DictDir           string
	InputDir          string
	OutputDir         string
	SimhashThreshold  int
	CandidatesFile    string
	KeywordOutputDir  string
	IndexDir          string
	DefaultTopK       int
	KeywordDictDir    string
	RecommendTopK     int
	WebHost           string
	WebPort           int
	EnableCache       bool
	RedisHost         string
	RedisPort         int
	CacheCapacity     int
	CacheTTLSeconds   int
}

func Default() *AppConfig {
	return &AppConfig{
		DictDir:          "./dict",
		InputDir:         "./input",
		OutputDir:        "./output",
		SimhashThreshold: 3,
		CandidatesFile:   "",
		KeywordOutputDir: "./docs",
		IndexDir:         "./output",
		DefaultTopK:      20,
		KeywordDictDir:   "./docs",
		RecommendTopK:    5,
		WebHost:          "0.0.0.0",
		WebPort:          8080,
		EnableCache:      true,
		RedisHost:        "127.0.0.1",
		RedisPort:        6379,
		CacheCapacity:    1000,
		CacheTTLSeconds:  3600,
	}
}

// Load reads a key=value file into a copy of Default(). A missing file is
// not an error: callers simply get defaults. Blank lines and lines starting
// with '#' are ignored; a malformed integer silently keeps its default.
func Load(path string) *AppConfig {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		cfg.apply(key, val)
	}
	return cfg
}

func (cfg *AppConfig) apply(key, val string) {
	switch key {
	case "DICT_DIR":
		cfg.DictDir = val
	case "INPUT_DIR":
		cfg.InputDir = val
	case "OUTPUT_DIR":
		cfg.OutputDir = val
	case "SIMHASH_THRESHOLD":
		setIntIfValid(&cfg.SimhashThreshold, val)
	case "CANDIDATES_FILE":
		cfg.CandidatesFile = val
	case "KEYWORD_OUTPUT_DIR":
		cfg.KeywordOutputDir = val
	case "INDEX_DIR":
		cfg.IndexDir = val
	case "DEFAULT_TOPK":
		setIntIfValid(&cfg.DefaultTopK, val)
	case "KEYWORD_DICT_DIR":
		cfg.KeywordDictDir = val
	case "RECOMMEND_TOPK":
		setIntIfValid(&cfg.RecommendTopK, val)
	case "WEB_HOST":
		cfg.WebHost = val
	case "WEB_PORT":
		setIntIfValid(&cfg.WebPort, val)
	case "ENABLE_CACHE":
		cfg.EnableCache = val == "true" || val == "1" || val == "yes"
	case "REDIS_HOST":
		cfg.RedisHost = val
	case "REDIS_PORT":
		setIntIfValid(&cfg.RedisPort, val)
	case "CACHE_CAPACITY":
		setIntIfValid(&cfg.CacheCapacity, val)
	case "CACHE_TTL":
		setIntIfValid(&cfg.CacheTTLSeconds, val)
	}
}

func setIntIfValid(dst *int, val string) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return
	}
	*dst = n
}
