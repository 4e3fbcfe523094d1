package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

var (
	moderateStatus string
	listPending    bool
)

// ModerateCmd représente la commande 'moderate'
var ModerateCmd = &cobra.Command{
	Use:   "moderate [link-id]",
	Short: "Approve, reject or flag a submitted link.",
	Long: `Sets the moderation status of a link. Only APPROVED links are eligible
for discovery. Use --pending without a link id to list links awaiting review.

Exemple:
  stumble moderate 5f0c... --status=APPROVED
  stumble moderate --pending`,
	Args: cobra.MaximumNArgs(1),
	Run: func(c *cobra.Command, args []string) {
		a, err := openApp()
		if err != nil {
			cmd.Log.Fatalf("Failed to open store: %v", err)
		}
		defer a.store.Close()
		ctx := context.Background()

		if listPending || len(args) == 0 {
			links, err := a.links.List(ctx, models.StatusPending, "")
			if err != nil {
				cmd.Log.Fatalf("Failed to list pending links: %v", err)
			}
			if len(links) == 0 {
				fmt.Println("Aucun lien en attente.")
				return
			}
			for _, l := range links {
				fmt.Printf("%s  %s  (%s, par %s)\n", l.ID, l.URL, l.Title, l.SubmittedBy)
			}
			return
		}

		link, err := a.links.Moderate(ctx, services.ModerateRequest{
			LinkID: args[0],
			Status: models.LinkStatus(moderateStatus),
		})
		if err != nil {
			cmd.Log.Fatalf("Failed to moderate link: %v", err)
		}
		fmt.Printf("Lien %s: %s\n", link.ID, link.Status)
	},
}

func init() {
	ModerateCmd.Flags().StringVar(&moderateStatus, "status", string(models.StatusApproved), "New status: APPROVED, REJECTED, FLAGGED or PENDING")
	ModerateCmd.Flags().BoolVar(&listPending, "pending", false, "List links awaiting moderation")

	cmd.RootCmd.AddCommand(ModerateCmd)
}
