package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/cxxcorpus/internal/discovery"
)

func newIndexCmd(opts *options) *cobra.Command {
	var (
		force     bool
		quiet     bool
		factFiles []string
	)

	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Parse the C++ sources under dir into the corpus",
		Long: `Index walks dir for C++ headers and sources, parses every file,
merges the declarations into one corpus and stores it.

When no file changed since the last run the stored corpus is kept.

Examples:
  # Index a source tree
  cxxcorpus index ~/src/engine

  # Rebuild and merge facts produced by an external tool
  cxxcorpus index --force --facts clang-facts.jsonl ~/src/engine
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := opts.load(args[0])
			if err != nil {
				return err
			}
			store, err := cfg.OpenStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			dc := cfg.Discovery()
			dc.Force = force
			dc.FactFiles = factFiles
			if !quiet {
				dc.Progress = newBarProgress(cmd.ErrOrStderr(), cfg.Log.Verbose)
			}

			stats, err := discovery.New(store).IndexProject(ctx, args[0], dc)
			if err != nil {
				return fmt.Errorf("index failed: %w", err)
			}
			printStatistics(cmd, stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "rebuild even when no file changed")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable the progress bar")
	cmd.Flags().StringSliceVar(&factFiles, "facts", nil, "JSON-lines fact files to merge after parsing")
	return cmd
}

func printStatistics(cmd *cobra.Command, stats *discovery.Statistics) {
	out := cmd.OutOrStdout()
	if stats.UpToDate {
		fmt.Fprintf(out, "✓ Up to date: %d entities (%.1fs)\n", stats.Entities, stats.Duration.Seconds())
		return
	}
	fmt.Fprintf(out, "✓ Indexing complete: %d entities in %.1fs\n", stats.Entities, stats.Duration.Seconds())
	fmt.Fprintf(out, "  Files:  %d indexed, %d skipped, %d failed\n", stats.FilesIndexed, stats.FilesSkipped, stats.FilesFailed)
	fmt.Fprintf(out, "  Facts:  %d merged, %d rejected\n", stats.FactsMerged, stats.FactsRejected)
	if stats.SyntaxErrors > 0 {
		fmt.Fprintf(out, "  Syntax errors: %d\n", stats.SyntaxErrors)
	}
	for _, msg := range stats.ErrorMessages {
		log.Printf("index: %s", msg)
	}
}
