package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set repository configuration values.

Usage:
  hdb config                          # Show all config
  hdb config min-title-length         # Get specific value
  hdb config min-title-length 15      # Set value

Keys:
  min-title-length   Titles must be longer than this many characters (default 10)
  include-potential  Keep potential duplicates when importing (true/false, default true)
  workers            Parallel duplicate classification (0 or 1 runs sequentially)

Sources are managed with 'hdb source'.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	MinTitleLength   int             `json:"min_title_length"`
	IncludePotential bool            `json:"include_potential"`
	Workers          int             `json:"workers"`
	Sources          []config.Source `json:"sources"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	if len(args) == 0 {
		resp := ConfigResponse{
			MinTitleLength:   cfg.TitleLength(),
			IncludePotential: cfg.KeepPotential(),
			Workers:          cfg.Workers,
			Sources:          cfg.Sources,
		}
		if resp.Sources == nil {
			resp.Sources = []config.Source{}
		}
		if humanOutput {
			fmt.Printf("min-title-length:  %d\n", resp.MinTitleLength)
			fmt.Printf("include-potential: %t\n", resp.IncludePotential)
			fmt.Printf("workers:           %d\n", resp.Workers)
			fmt.Printf("sources:           %d\n", len(resp.Sources))
		} else {
			outputJSON(resp)
		}
		return nil
	}

	key := normalizeKey(args[0])

	if len(args) == 1 {
		value, ok := configValue(cfg, key)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	value := args[1]
	switch key {
	case "min-title-length":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			exitWithError(ExitError, "min-title-length must be a non-negative integer: %s", value)
		}
		cfg.MinTitleLength = n
	case "include-potential":
		b, err := strconv.ParseBool(value)
		if err != nil {
			exitWithError(ExitError, "include-potential must be true or false: %s", value)
		}
		cfg.IncludePotential = &b
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			exitWithError(ExitError, "workers must be a non-negative integer: %s", value)
		}
		cfg.Workers = n
	default:
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// normalizeKey accepts snake_case or kebab-case keys.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

func configValue(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "min-title-length":
		return strconv.Itoa(cfg.TitleLength()), true
	case "include-potential":
		return strconv.FormatBool(cfg.KeepPotential()), true
	case "workers":
		return strconv.Itoa(cfg.Workers), true
	}
	return "", false
}
