package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/repository"
	"github.com/grocerysushi/stumbleupon-clone/internal/seed"
)

var seedFile string

// SeedCmd loads the default topics and sample links.
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load default topics and sample links.",
	Long: `Creates the default topics and a few approved sample links.
Existing records are left untouched, so the command can be run repeatedly.`,
	Run: func(_ *cobra.Command, _ []string) {
		data, err := seed.Default()
		if seedFile != "" {
			data, err = seed.Load(seedFile)
		}
		if err != nil {
			cmd.Log.Fatalf("Failed to load seed data: %v", err)
		}

		store, err := repository.Open(cmd.Cfg, cmd.Log)
		if err != nil {
			cmd.Log.Fatalf("Failed to open store: %v", err)
		}
		defer store.Close()

		res, err := seed.Seed(context.Background(), store, data, cmd.Log)
		if err != nil {
			cmd.Log.Fatalf("Seeding failed: %v", err)
		}
		fmt.Printf("Seed terminé: %d topics, %d liens créés, %d liens existants.\n",
			res.Topics, res.Links, res.SkippedLinks)
	},
}

func init() {
	SeedCmd.Flags().StringVar(&seedFile, "file", "", "YAML seed file (default: embedded data)")

	cmd.RootCmd.AddCommand(SeedCmd)
}
