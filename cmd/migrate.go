package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/db"
	"github.com/curaious/devboard/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run Migrations",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(cmd.Help())
	},
}

// newMigrator connects to the configured database. It exits the process on
// failure.
func newMigrator() *migrations.Migrator {
	conn, err := db.NewConn(config.ReadConfig())
	if err != nil {
		fmt.Println("Unable to connect to database", err)
		os.Exit(1)
	}

	migrator, err := migrations.NewMigrator(conn)
	if err != nil {
		fmt.Println("Unable to initialize migrator", err)
		os.Exit(1)
	}

	return migrator
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display status of each migration",
	Run: func(cmd *cobra.Command, args []string) {
		if err := newMigrator().MigrationStatus(); err != nil {
			fmt.Println("Unable to fetch migration status", err)
			os.Exit(1)
		}
	},
}

var migrateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new empty migration file",
	Run: func(cmd *cobra.Command, args []string) {
		name, err := cmd.Flags().GetString("name")
		if err != nil || name == "" {
			fmt.Println("Flag `name` is required", err)
			os.Exit(1)
		}

		if err := newMigrator().CreateMigration(name); err != nil {
			fmt.Println("Unable to create new migration file", err)
			os.Exit(1)
		}
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run up migrations",
	Long:  "Run all 'up' migrations by default.\nIf step is provided, it will run `N` 'up' migrations.",
	Run: func(cmd *cobra.Command, args []string) {
		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			fmt.Println("Unable to read flag `step`", err)
			os.Exit(1)
		}

		if err := newMigrator().Up(step); err != nil {
			fmt.Println("Unable to run `up` migrations", err)
			os.Exit(1)
		}
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Run down migrations",
	Long:  "Run all 'down' migrations by default.\nIf step is provided, it will run `N` 'down' migrations.",
	Run: func(cmd *cobra.Command, args []string) {
		step, err := cmd.Flags().GetInt("step")
		if err != nil {
			fmt.Println("Unable to read flag `step`", err)
			os.Exit(1)
		}

		if err := newMigrator().Down(step); err != nil {
			fmt.Println("Unable to run `down` migrations", err)
			os.Exit(1)
		}
	},
}

// Register the "migrate" command
func init() {
	migrateCreateCmd.Flags().StringP("name", "n", "", "Name for the migration")
	migrateCmd.AddCommand(migrateCreateCmd)

	migrateUpCmd.Flags().IntP("step", "s", 0, "Number of migrations to execute")
	migrateCmd.AddCommand(migrateUpCmd)

	migrateDownCmd.Flags().IntP("step", "s", 0, "Number of migrations to execute")
	migrateCmd.AddCommand(migrateDownCmd)

	migrateCmd.AddCommand(migrateStatusCmd)

	rootCmd.AddCommand(migrateCmd)
}
