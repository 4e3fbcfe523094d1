package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

var (
	submitURL     string
	submitUser    string
	submitTopics  string
	submitApprove bool
)

// SubmitCmd représente la commande 'submit'
var SubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Soumet un nouveau lien à la découverte.",
	Long: `Cette commande enregistre un lien, récupère son titre et sa description,
et le place en attente de modération (ou l'approuve directement avec --approve).

Exemple:
  stumble submit --url="https://go.dev/blog" --user=alice --topics=programming,technology`,
	Run: func(_ *cobra.Command, _ []string) {
		a, err := openApp()
		if err != nil {
			cmd.Log.Fatalf("Failed to open store: %v", err)
		}
		defer a.store.Close()

		var topics []string
		if submitTopics != "" {
			topics = strings.Split(submitTopics, ",")
		}
		link, err := a.links.Submit(context.Background(), services.SubmitRequest{
			URL:         submitURL,
			UserID:      submitUser,
			Topics:      topics,
			PreApproved: submitApprove,
		})
		if err != nil {
			cmd.Log.Fatalf("Failed to submit link: %v", err)
		}

		fmt.Printf("Lien soumis avec succès:\n")
		fmt.Printf("ID: %s\n", link.ID)
		fmt.Printf("Titre: %s\n", link.Title)
		fmt.Printf("Domaine: %s\n", link.Domain)
		fmt.Printf("Statut: %s\n", link.Status)
		fmt.Printf("Stats: %s\n", cmd.Cfg.LinkStatsURL(link.ID))
	},
}

func init() {
	SubmitCmd.Flags().StringVar(&submitURL, "url", "", "The URL to submit")
	SubmitCmd.Flags().StringVar(&submitUser, "user", "", "Submitter id")
	SubmitCmd.Flags().StringVar(&submitTopics, "topics", "", "Comma-separated topic slugs")
	SubmitCmd.Flags().BoolVar(&submitApprove, "approve", false, "Approve the link immediately")
	SubmitCmd.MarkFlagRequired("url")
	SubmitCmd.MarkFlagRequired("user")

	cmd.RootCmd.AddCommand(SubmitCmd)
}
