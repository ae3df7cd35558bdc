// Package cli implements the cxxcorpus command tree.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/cxxcorpus/internal/config"
)

// options holds the global flags shared by every command
type options struct {
	configFile string
	verbose    bool
	dbPath     string
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "cxxcorpus",
		Short: "Index C++ declarations and query overload sets",
		Long: `cxxcorpus parses C++ sources into a corpus of declarations
(namespaces, records, functions, enums, aliases, variables), stores it in
SQLite and answers queries about it: overload sets per namespace, symbol
lookup by name or identity, inheritance and full-text search.

The same queries are served to AI assistants over MCP with "cxxcorpus serve".`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries command output and the MCP protocol
			log.SetOutput(os.Stderr)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is <dir>/.cxxcorpus/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (default "+config.DefaultDBPath+")")

	rootCmd.AddCommand(
		newIndexCmd(opts),
		newOverloadsCmd(opts),
		newSymbolCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the configuration for rootDir and applies the global flags
func (o *options) load(rootDir string) (*config.Config, error) {
	cfg, err := config.Load(rootDir, o.configFile)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		path, err := config.ExpandHome(o.dbPath)
		if err != nil {
			return nil, err
		}
		cfg.Storage.DBPath = path
	}
	if o.verbose {
		cfg.Log.Verbose = true
	}
	if cfg.Log.Verbose {
		log.Printf("database: %s", cfg.Storage.DBPath)
	}
	return cfg, nil
}
