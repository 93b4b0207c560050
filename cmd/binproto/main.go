package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pior/binproto/internal/config"
	"github.com/pior/binproto/internal/logging"
)

var (
	configPath string
	logLevel   string

	// loaded by the root command before any subcommand runs
	cfg config.File
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "binproto",
		Short: "Encode and decode chunked byte streams",
		Long: `binproto converts between text or fixed-width records and raw bytes.

Input is read from stdin in chunks, exactly as a network transport would
deliver it, so multi-byte characters split across reads are reassembled and
malformed bytes are reported without stopping the stream.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureRuntime()

			var err error
			if configPath != "" {
				cfg, err = config.Load(configPath)
			} else {
				cfg, err = config.Parse("")
			}
			if err != nil {
				return err
			}

			level := cfg.Log.Level
			if logLevel != "" {
				level = logLevel
			}
			if lvl, ok := logging.ParseLevel(level); ok {
				zerolog.SetGlobalLevel(lvl)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (see 'binproto config init')")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace|debug|info|warn|error|off")

	root.AddCommand(newDecodeCmd())
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newPackCmd())
	root.AddCommand(newUnpackCmd())
	root.AddCommand(newConfigCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
