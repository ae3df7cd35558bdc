package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/cxxcorpus/internal/mcp"
	"github.com/dshills/cxxcorpus/internal/storage"
)

var (
	// Version information - typically set via ldflags at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cxxcorpus",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cxxcorpus %s\n", Version)
			fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", BuildDate)
			fmt.Fprintf(out, "MCP server: %s %s\n", mcp.ServerName, mcp.ServerVersion)
			fmt.Fprintf(out, "Build mode: %s\n", storage.BuildMode)
			fmt.Fprintf(out, "SQLite driver: %s\n", storage.DriverName)
		},
	}
}
