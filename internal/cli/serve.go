package cli

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/cxxcorpus/internal/mcp"
	"github.com/dshills/cxxcorpus/internal/storage"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve the corpus over MCP on stdio",
		Long: `Serve starts a Model Context Protocol server on stdin/stdout.
Configuration is read from dir (default: the working directory).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			cfg, err := opts.load(root)
			if err != nil {
				return err
			}

			log.Printf("mcp: cxxcorpus %s starting (build mode %s, driver %s)", Version, storage.BuildMode, storage.DriverName)
			server, err := mcp.NewServer(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.Println("mcp: ready, listening on stdio")
			if err := server.Serve(ctx); err != nil {
				return err
			}
			log.Println("mcp: server stopped")
			return nil
		},
	}
}
