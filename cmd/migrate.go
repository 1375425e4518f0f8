package cmd

import (
	"errors"

	"github.com/hireready/backend/services"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		config := services.LoadConfig(cfgFile)
		closer := setupLogging(config.Log)
		defer closer.Close()

		if config.Database.URL == "" {
			return errors.New("DATABASE_URL must be set")
		}
		_, _, err := openStore(config.Database, true)
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
