package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new study database",
	Long: `Initialize a new study database in the current directory.

Creates:
  .hydrodb/
  ├── studies.jsonl   # Empty file
  ├── config.json     # Default config
  └── cache/          # Query database (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a study database")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s directory: %v", config.HydroDir, err)
	}

	f, err := os.Create(config.StudiesPath(root))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", config.StudiesFile, err)
	}
	f.Close()

	gitignore := filepath.Join(config.HydroPath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}

	cfg := &config.Config{MinTitleLength: config.DefaultMinTitleLength}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	appLog.Info("initialized study database", "path", root)
	if humanOutput {
		fmt.Printf("Initialized study database in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
