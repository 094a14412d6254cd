// Package main provides the hdb CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/config"
	"github.com/echowater/hydrodb/internal/logger"
	"github.com/echowater/hydrodb/internal/storage"
	"github.com/echowater/hydrodb/internal/study"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// shutdownSignals cancel the command context.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// appLog is configured before any command runs.
var appLog = logger.Nop()

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(shutdownSignals...),
	); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hdb",
	Short: "Git-versionable database of hydrogen research studies",
	Long: `hdb collects hydrogen research studies from CSV exports, JSON dumps,
scraped study pages and PDFs into one de-duplicated database.

Studies are stored in git-versionable JSONL with an ephemeral SQLite
database for search. All commands output JSON by default; use --human
for readable text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		config.ResetGlobalConfigCache()

		log, err := logger.New(config.GetLogMode())
		if err != nil {
			return fmt.Errorf("configuring logger: %w", err)
		}
		appLog = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		appLog.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
}

// getStartingDirectory returns the directory to start searching for a repository.
// Checks HDB_DATA_PATH and the global data_path first, then the working directory.
func getStartingDirectory() (string, int) {
	if root := config.GetDataPath(); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustReadStudies reads the repository's studies, exits on error.
func mustReadStudies(repoRoot string) []study.Record {
	recs, err := storage.ReadAll(config.StudiesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading studies: %v", err)
	}
	return recs
}

// mustWriteStudies replaces the repository's studies and refreshes the
// query database, exits on error.
func mustWriteStudies(repoRoot string, recs []study.Record) {
	if err := storage.WriteAll(config.StudiesPath(repoRoot), recs); err != nil {
		exitWithError(ExitError, "writing studies: %v", err)
	}
	mustRebuildDatabase(repoRoot)
}

// mustRebuildDatabase reloads the query database from JSONL, exits on error.
func mustRebuildDatabase(repoRoot string) int {
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	count, err := db.RebuildFromJSONL(config.StudiesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}
	return count
}

// now is the clock used for statistics and reports.
var now = time.Now
