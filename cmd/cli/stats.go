package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats [link-id]",
	Short: "Get statistics for a link",
	Long:  `Get the engagement counters and the event ledger totals for the provided link id.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats exécute la logique pour la commande stats
func runStats(_ *cobra.Command, args []string) {
	a, err := openApp()
	if err != nil {
		cmd.Log.Fatalf("Failed to open store: %v", err)
	}
	defer a.store.Close()

	stats, err := a.links.Stats(context.Background(), args[0])
	if err != nil {
		if customerrors.IsNotFound(err) {
			fmt.Printf("Error: link '%s' not found\n", args[0])
		} else {
			fmt.Printf("Error retrieving statistics: %v\n", err)
		}
		os.Exit(1)
	}

	link := stats.Link
	fmt.Printf("Statistiques pour le lien: %s\n", link.ID)
	fmt.Printf("URL: %s\n", link.URL)
	fmt.Printf("Titre: %s\n", link.Title)
	fmt.Printf("Statut: %s\n", link.Status)
	fmt.Printf("Vues: %d  Likes: %d  Dislikes: %d  Skips: %d  Saves: %d\n",
		link.ViewCount, link.LikeCount, link.DislikeCount, link.SkipCount, link.SaveCount)
	fmt.Println("Événements:")
	for _, action := range append([]models.Action{models.ActionView}, models.FeedbackActions...) {
		fmt.Printf("  %-8s %d\n", action, stats.Events[action])
	}
	fmt.Printf("Date de création: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
}
