package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

var feedbackUser string

// FeedbackCmd représente la commande 'feedback'
var FeedbackCmd = &cobra.Command{
	Use:   "feedback [link-id] [action]",
	Short: "Record a reaction to a link.",
	Long:  `Records LIKE, DISLIKE, SKIP, SAVE or SHARE for a link on behalf of a viewer.`,
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		a, err := openApp()
		if err != nil {
			cmd.Log.Fatalf("Failed to open store: %v", err)
		}
		defer a.store.Close()

		event, err := a.feedback.Record(context.Background(), services.FeedbackRequest{
			UserID: feedbackUser,
			LinkID: args[0],
			Action: models.Action(strings.ToUpper(args[1])),
		})
		if err != nil {
			cmd.Log.Fatalf("Failed to record feedback: %v", err)
		}
		fmt.Printf("Événement %s enregistré (%s).\n", event.ID, event.Action)
	},
}

func init() {
	FeedbackCmd.Flags().StringVar(&feedbackUser, "user", "", "Viewer id")
	FeedbackCmd.MarkFlagRequired("user")

	cmd.RootCmd.AddCommand(FeedbackCmd)
}
