// Command zh-doc-search is the CLI entrypoint: it loads app.conf, dispatches
// one of --build-index / --build-keywords / --query / --recommend, and
// exits with the handler's status code.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/TheLegendMe/zh-doc-search/command"
	"github.com/TheLegendMe/zh-doc-search/config"
)

const defaultConfigPath = "./conf/app.conf"

func printUsage(prog string) {
	fmt.Fprintf(os.Stderr, "Usage:\n"+
		"  %s --build-index [config]\n"+
		"      Build search index from XML files\n\n"+
		"  %s --build-keywords [config]\n"+
		"      Build keyword dictionary from corpus\n\n"+
		"  %s --query [config] <term1> <term2> ... [topK]\n"+
		"      Search documents by keywords\n\n"+
		"  %s --recommend [config] <query> [topK]\n"+
		"      Get keyword recommendations\n\n"+
		"Config file (optional): defaults to %s\n",
		prog, prog, prog, prog, defaultConfigPath)
}

// looksLikeConfigPath mirrors the original CLI's heuristic for telling a
// config-file override apart from the first query/recommend term: it must
// not start with '-' and must look path-like (contains ".conf" or '/').
func looksLikeConfigPath(s string) bool {
	if s == "" || strings.HasPrefix(s, "-") {
		return false
	}
	return strings.Contains(s, ".conf") || strings.Contains(s, "/")
}

func main() {
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	if len(argv) < 2 {
		printUsage(argv[0])
		return 1
	}

	name := argv[1]
	handler, ok := command.Dispatch(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage(argv[0])
		return 1
	}

	configPath := defaultConfigPath
	var args []string

	switch name {
	case "--build-index", "--build-keywords":
		if len(argv) >= 3 {
			configPath = argv[2]
		}
	case "--query", "--recommend":
		start := 2
		if len(argv) >= 3 && looksLikeConfigPath(argv[2]) {
			configPath = argv[2]
			start = 3
		}
		args = argv[start:]
	}

	cfg := config.Load(configPath)
	return handler(cfg, args)
}
