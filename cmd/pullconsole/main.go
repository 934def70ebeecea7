package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "pullconsole",
		Short: "Operator console for the image pre-pull service",
		Long: `pullconsole is a terminal console for a Kubernetes image pre-pull
service. Run it without arguments for the interactive dashboard, or use
the subcommands to create tasks and schedules from spec files in scripts.`,
		SilenceUsage: true,
		RunE:         runConsole,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
