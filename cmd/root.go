package cmd

import (
	"github.com/spf13/cobra"
)

const app = "hireready"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hireready runs the adaptive interview session backend",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is .env in current directory)")
}
