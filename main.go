package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"harvest-go/pkg/action"
	"harvest-go/pkg/harvester"
	"harvest-go/pkg/logger"
	"harvest-go/pkg/storage"
	"harvest-go/pkg/transport"
)

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

type actionSpec struct {
	Terms []interface{}          `json:"terms"`
	Attrs map[string]interface{} `json:"attrs"`
}

type output struct {
	Report  *harvester.Report                `json:"report"`
	Results map[string][]storage.PageMatches `json:"results"`
}

func main() {
	// Environment variable defaults (CI friendly)
	defaultURLs := getEnvOrDefault("HARVEST_URLS", "")
	defaultActions := getEnvOrDefault("HARVEST_ACTIONS", "")
	defaultWorkers := getEnvIntOrDefault("HARVEST_WORKERS", 5)
	defaultThreshold := getEnvIntOrDefault("HARVEST_STOP_THRESHOLD", 3)
	defaultTimeout := getEnvIntOrDefault("HARVEST_TIMEOUT", 30)
	defaultDebug := getEnvBoolOrDefault("DEBUG", false)

	// Command line flags (override environment variables)
	var (
		urlList       = flag.String("urls", defaultURLs, "Comma-separated page URLs (env: HARVEST_URLS)")
		actionsJSON   = flag.String("actions", defaultActions, "JSON array of actions, e.g. '[{\"terms\":[\"a\"],\"attrs\":{\"class\":\"title\"}}]' (env: HARVEST_ACTIONS)")
		actionsFile   = flag.String("actions-file", "", "Path to a JSON file with the actions array")
		workers       = flag.Int("workers", defaultWorkers, "Concurrent fetch workers (env: HARVEST_WORKERS)")
		stopThreshold = flag.Int("stop-threshold", defaultThreshold, "Consecutive repeated pages before stopping (env: HARVEST_STOP_THRESHOLD)")
		timeoutSec    = flag.Int("timeout", defaultTimeout, "Per-fetch timeout in seconds (env: HARVEST_TIMEOUT)")
		debug         = flag.Bool("debug", defaultDebug, "Enable debug logging (env: DEBUG)")
		help          = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		printUsage()
		return
	}

	if *urlList == "" {
		fmt.Println("ERROR: at least one URL is required.")
		fmt.Println("Use -urls flag or HARVEST_URLS environment variable.")
		fmt.Println("")
		printUsage()
		os.Exit(1)
	}

	specs, err := loadActionSpecs(*actionsJSON, *actionsFile)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	if len(specs) == 0 {
		fmt.Println("ERROR: at least one action is required.")
		fmt.Println("Use -actions, -actions-file or HARVEST_ACTIONS.")
		fmt.Println("")
		printUsage()
		os.Exit(1)
	}

	level := "info"
	if *debug {
		level = "debug"
	}
	appLogger := logger.New(logger.Config{Level: level, Format: "console", Output: "stdout"})
	logger.SetLogger(appLogger)

	urls := splitURLs(*urlList)
	actions := make([]*action.Action, len(specs))
	for i, spec := range specs {
		actions[i] = action.New(spec.Terms, spec.Attrs)
	}

	client := transport.NewClient(transport.Config{
		Timeout: time.Duration(*timeoutSec) * time.Second,
	})
	h := harvester.New(client, harvester.Config{
		MaxWorkers:    *workers,
		StopThreshold: *stopThreshold,
	})

	report, err := h.Run(context.Background(), urls, actions)
	if err != nil {
		fmt.Printf("ERROR: harvest failed: %v\n", err)
		os.Exit(1)
	}

	results := make(map[string][]storage.PageMatches)
	for _, act := range actions {
		id, idErr := act.Identity()
		if idErr != nil {
			continue
		}
		if pages := h.Cache().Get(id); pages != nil {
			results[harvester.IdentityKey(id)] = pages
		}
	}

	encoded, err := json.MarshalIndent(output{Report: report, Results: results}, "", "  ")
	if err != nil {
		fmt.Printf("ERROR: encoding results: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}

func loadActionSpecs(inline, file string) ([]actionSpec, error) {
	raw := inline
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading actions file: %w", err)
		}
		raw = string(data)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var specs []actionSpec
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		return nil, fmt.Errorf("parsing actions JSON: %w", err)
	}
	return specs, nil
}

func splitURLs(list string) []string {
	parts := strings.Split(list, ",")
	urls := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

func printUsage() {
	fmt.Println("harvest-go - concurrent page harvester")
	fmt.Println("")
	fmt.Println("Fetches pages concurrently, stops once pagination starts repeating,")
	fmt.Println("and extracts elements declared as actions (tag names + attributes).")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  harvest-go -urls <url,url,...> -actions <json> [options]")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  harvest-go -urls 'https://example.com/page/1,https://example.com/page/2' \\")
	fmt.Println("    -actions '[{\"terms\":[\"a\"],\"attrs\":{\"class\":\"product\"}}]'")
	fmt.Println("")
	fmt.Println("Options:")
	flag.PrintDefaults()
}
