package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/storelocator/internal/config"
	"github.com/kailas-cloud/storelocator/internal/version"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var env string
	root := &cobra.Command{
		Use:           "storelocator",
		Short:         "Proximity search over a fixed store set",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "Config environment (local, dev, prod)")
	root.Version = version.String()
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(serveCmd(&env))
	root.AddCommand(searchCmd(&env))
	root.AddCommand(versionCmd())
	return root
}
