package main

import (
	"fmt"
	"os"

	"github.com/efebarandurmaz/ontograph/internal/export"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		verbosity  int
	)

	rootCmd := &cobra.Command{
		Use:           "ontograph",
		Short:         "Export ontology class hierarchies as graphs and level tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")

	var (
		src         sourceFlags
		format      string
		maxLevel    int
		outputPath  string
		jsonReport  bool
		metricsFile string
	)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Render the class hierarchy in one output format",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, configPath, verbosity, src)
			if err != nil {
				return err
			}
			defer env.close()
			if cmd.Flags().Changed("format") {
				env.cfg.Export.Format = format
			}
			if cmd.Flags().Changed("max-level") {
				env.cfg.Export.MaxLevel = maxLevel
			}
			if cmd.Flags().Changed("output") {
				env.cfg.Export.Output = outputPath
			}
			if cmd.Flags().Changed("metrics-file") {
				env.cfg.Metrics.Textfile = metricsFile
			}
			return runExport(cmd.Context(), env, jsonReport)
		},
	}
	src.register(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "tsv", "Output format (see 'ontograph formats')")
	exportCmd.Flags().IntVar(&maxLevel, "max-level", export.DefaultMaxLevel, "Deepest level column for levelmembership")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&jsonReport, "json", false, "Print the run summary as JSON")
	exportCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write prometheus counters to this textfile")

	var describeJSON, describeStats bool
	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Print class, root and relation counts and the hierarchy depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, configPath, verbosity, src)
			if err != nil {
				return err
			}
			defer env.close()
			return runDescribe(cmd.Context(), env, describeJSON, describeStats)
		},
	}
	src.register(describeCmd)
	describeCmd.Flags().BoolVar(&describeJSON, "json", false, "Print the description as JSON")
	describeCmd.Flags().BoolVar(&describeStats, "stats", false, "Also print fan-in/fan-out and anomaly statistics")

	var listClass string
	listCmd := &cobra.Command{
		Use:       "list {classes|roots|subclasses}",
		Short:     "List classes, root classes or subclass relations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"classes", "roots", "subclasses"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if listClass != "" && args[0] != "subclasses" {
				return fmt.Errorf("--class only applies to 'list subclasses'")
			}
			env, err := setup(cmd, configPath, verbosity, src)
			if err != nil {
				return err
			}
			defer env.close()
			if listClass != "" {
				return runSubclassesOf(cmd.Context(), env, listClass)
			}
			env.cfg.Export.Format = string(listingFormat(args[0]))
			env.cfg.Export.Output = ""
			return runExport(cmd.Context(), env, false)
		},
	}
	src.register(listCmd)
	listCmd.Flags().StringVar(&listClass, "class", "", "With 'subclasses', list only the direct subclasses of this class URI")

	formatsCmd := &cobra.Command{
		Use:   "formats",
		Short: "List available export formats",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available export formats:")
			fmt.Println()
			for _, info := range export.Formats() {
				fmt.Printf("  %-16s %-9s %s\n", info.Name, info.Extension, info.Description)
			}
			fmt.Println()
			fmt.Println("Aliases: cyjs, cytoscape (json), levels (levelmembership)")
		},
	}

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Store the class graph in Neo4j",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, configPath, verbosity, src)
			if err != nil {
				return err
			}
			defer env.close()
			return runPush(cmd.Context(), env)
		},
	}
	src.register(pushCmd)

	rootCmd.AddCommand(exportCmd, describeCmd, listCmd, formatsCmd, pushCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
