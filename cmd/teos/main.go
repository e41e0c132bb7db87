// teos: seal, open and inspect TEOS envelopes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/torlnapp/teos"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "teos",
		Short: "Seal and open TEOS authenticated envelopes",
		Long: `teos binds a payload to its context metadata, encrypts it and signs
the result with Ed25519.

Config file search order (first found wins):
  /etc/teos/teos.toml
  $HOME/.config/teos/teos.toml
  path supplied via --config

All flags can be set via TEOS_<FLAG> env vars (dashes become underscores)
or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newSealCmd(),
		newOpenCmd(),
		newInspectCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "teos %s (format %s, %s)\n", Version, teos.Version, teos.TypeTag)
		},
	}
}
