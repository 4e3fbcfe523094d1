package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

var (
	stumbleUser   string
	stumbleTopics string
)

// StumbleCmd représente la commande 'stumble'
var StumbleCmd = &cobra.Command{
	Use:   "stumble",
	Short: "Pick the next link to show.",
	Long: `Selects one eligible link. With --user the link is recorded as viewed
and will not be offered to that viewer again.`,
	Run: func(_ *cobra.Command, _ []string) {
		a, err := openApp()
		if err != nil {
			cmd.Log.Fatalf("Failed to open store: %v", err)
		}
		defer a.store.Close()

		req := services.SelectRequest{ViewerID: stumbleUser}
		if stumbleTopics != "" {
			req.Topics = strings.Split(stumbleTopics, ",")
		}
		link, err := a.discovery.Select(context.Background(), req)
		if err != nil {
			if customerrors.IsNotFound(err) {
				fmt.Println("No links available")
				os.Exit(1)
			}
			cmd.Log.Fatalf("Failed to select a link: %v", err)
		}

		fmt.Printf("%s\n%s\n", link.Title, link.URL)
		if link.Description != nil {
			fmt.Printf("%s\n", *link.Description)
		}
		fmt.Printf("ID: %s  Vues: %d  Likes: %d\n", link.ID, link.ViewCount, link.LikeCount)
	},
}

func init() {
	StumbleCmd.Flags().StringVar(&stumbleUser, "user", "", "Viewer id (omit for an anonymous pick)")
	StumbleCmd.Flags().StringVar(&stumbleTopics, "topics", "", "Comma-separated topic slugs")

	cmd.RootCmd.AddCommand(StumbleCmd)
}
