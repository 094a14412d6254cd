package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/echowater/hydrodb/internal/config"
)

var sourceFormat string

func init() {
	sourceAddCmd.Flags().StringVar(&sourceFormat, "format", "", "Source format (default: from extension)")
	sourceCmd.AddCommand(sourceAddCmd, sourceListCmd, sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage the sources merged by 'hdb merge'",
	Long: `Manage the ordered list of sources merged by 'hdb merge'.

The first source fills an empty database; later sources only add studies
that are not duplicates. Order sources from most to least trusted.`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Append a source",
	Long: `Append a source. Relative paths are resolved against the repository root.

Example:
  hdb source add primary "data/Hydrogen Research Database - Primary.csv"`,
	Args: cobra.ExactArgs(2),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sources in merge order",
	Args:  cobra.NoArgs,
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	src := config.Source{Name: args[0], Path: args[1], Format: sourceFormat}
	cfg.Sources = append(cfg.Sources, src)
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Added source %s (%s)\n", src.Name, src.Path)
	} else {
		outputJSON(src)
	}
	return nil
}

func runSourceList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	sources := cfg.Sources
	if sources == nil {
		sources = []config.Source{}
	}
	if humanOutput {
		if len(sources) == 0 {
			fmt.Println("No sources configured")
		}
		for i, s := range sources {
			format, _ := config.SourceFormat(s)
			fmt.Printf("%d. %s  [%s]  %s\n", i+1, s.Name, format, s.Path)
		}
	} else {
		outputJSON(sources)
	}
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	i := slices.IndexFunc(cfg.Sources, func(s config.Source) bool { return s.Name == args[0] })
	if i < 0 {
		exitWithError(ExitError, "source not found: %s", args[0])
	}
	cfg.Sources = slices.Delete(cfg.Sources, i, i+1)
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Removed source %s\n", args[0])
	} else {
		outputJSON(StatusResponse{Status: "removed"})
	}
	return nil
}
