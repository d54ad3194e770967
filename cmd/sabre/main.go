package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/sabre/config"
)

// app holds what every command shares once flags are parsed.
type app struct {
	configPath string
	verbosity  int
	cfg        *config.Config
	log        commonlog.Logger
}

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:          "sabre",
		Short:        "Remap names in JVM class files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if !cmd.Flags().Changed("verbose") {
				a.verbosity = cfg.Verbosity
			}
			commonlog.Configure(a.verbosity, nil)
			a.log = commonlog.GetLogger("sabre.cli")
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "log more, repeat for debug output")

	rootCmd.AddCommand(newRemapCmd(a))
	rootCmd.AddCommand(newMappingsCmd(a))
	rootCmd.AddCommand(newHierarchyCmd(a))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
