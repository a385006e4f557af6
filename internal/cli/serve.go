package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/photo-mosaic/internal/server"
)

// newServeCommand runs the MCP server on stdin/stdout. Settings from the
// config files are the defaults for every tool call.
func newServeCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve mosaic tools over MCP on stdin/stdout",
		Long: `serve speaks the Model Context Protocol (JSON-RPC 2.0, one message per line)
on stdin and stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(logger, f.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Info("serving MCP on stdio", "version", version)
			return server.New(cfg, logger, version).Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
