package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
)

// MigrateCmd represents the 'migrate' command
// This command handles database schema creation and updates
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database (SQLite)
and executes GORM automatic migrations to create the 'links', 'topics',
'link_topics' and 'events' tables based on the Go models.

With the badger driver there is no schema; the command only checks
that the data directory can be opened.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := cmd.Cfg
		if cfg.Database.Driver == "badger" {
			store, err := repository.Open(cfg, cmd.Log)
			if err != nil {
				cmd.Log.Fatalf("Failed to open badger store: %v", err)
			}
			defer store.Close()
			fmt.Println("Badger store ready, no migration needed.")
			return
		}

		db, err := repository.OpenSQLite(cfg.Database.Name)
		if err != nil {
			cmd.Log.Fatalf("Failed to connect to database: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			cmd.Log.Fatalf("FATAL: Failed to get underlying SQL database: %v", err)
		}
		defer sqlDB.Close()

		// Création des tables à partir des modèles
		if err := repository.Migrate(db); err != nil {
			cmd.Log.Fatalf("Failed to migrate database: %v", err)
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
