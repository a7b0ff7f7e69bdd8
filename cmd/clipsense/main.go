// cmd/clipsense/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/clipsense/clipsense/internal/httpapi"
	"github.com/clipsense/clipsense/internal/rules"
	"github.com/clipsense/clipsense/internal/utils"
	"github.com/clipsense/clipsense/pkg/api"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// loadConfig builds the engine configuration, honoring --config when given.
func loadConfig() (*api.EngineConfig, error) {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return api.LoadConfig(os.Args[i+1])
		}
	}
	return api.DefaultConfig(), nil
}

func newClient() (*api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg)
}

// runDetect detects a single URL and prints the result as JSON.
func runDetect(url string) {
	client, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	result := client.Detect(context.Background(), url)
	printJSON(result)
}

// runBatch reads URLs, one per line, from a file (or stdin with "-") and
// detects them in bounded concurrency windows.
func runBatch(path string) {
	var reader *bufio.Scanner
	if path == "-" {
		reader = bufio.NewScanner(os.Stdin)
	} else {
		file, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		reader = bufio.NewScanner(file)
	}

	var urls []string
	for reader.Scan() {
		line := strings.TrimSpace(reader.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := reader.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no URLs to detect")
		os.Exit(1)
	}

	client, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	results := client.DetectBatch(context.Background(), urls)
	printJSON(results)
}

// runServer starts the HTTP surface over the detection engine.
func runServer() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLoggerWithLevel(utils.ParseLogLevel(cfg.LogLevel))

	client, err := api.NewClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := httpapi.NewServer(client, logger, version).Run(cfg.Server.ListenAddress); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runValidate checks a platform rule file, reporting malformed entries
// without aborting.
func runValidate(path string) {
	logger := utils.NewLogger()
	loaded, skipped, err := rules.LoadFile(path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Rule file '%s': %d valid rules", path, len(loaded))
	if skipped > 0 {
		fmt.Printf(", %d malformed entries skipped", skipped)
	}
	fmt.Println()
	if skipped > 0 {
		os.Exit(2)
	}
}

func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// main handles CLI arguments and routes to the appropriate command.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "detect":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: URL required\n")
			fmt.Fprintf(os.Stderr, "Usage: clipsense detect <url>\n")
			os.Exit(1)
		}
		runDetect(os.Args[2])

	case "batch":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: URL file required ('-' for stdin)\n")
			fmt.Fprintf(os.Stderr, "Usage: clipsense batch <urls.txt>\n")
			os.Exit(1)
		}
		runBatch(os.Args[2])

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: rule file required\n")
			fmt.Fprintf(os.Stderr, "Usage: clipsense validate <rules.yaml>\n")
			os.Exit(1)
		}
		runValidate(os.Args[2])

	case "server":
		runServer()

	case "version", "--version", "-v":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

// printUsage displays help information
func printUsage() {
	fmt.Println("ClipSense - URL Platform Detection Engine")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  clipsense detect <url>           Detect platform, content type and strategy for a URL")
	fmt.Println("  clipsense batch <urls.txt>       Detect every URL in a file ('-' reads stdin)")
	fmt.Println("  clipsense validate <rules.yaml>  Validate a platform rule file")
	fmt.Println("  clipsense server                 Serve the detection API over HTTP")
	fmt.Println("  clipsense version                Show version information")
	fmt.Println("  clipsense help                   Show this help message")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <config.yaml>           Use an engine configuration file")
}

// printVersion displays version information
func printVersion() {
	fmt.Printf("ClipSense %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
