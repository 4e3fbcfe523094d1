package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/workers"
)

var (
	importUser    string
	importTopics  string
	importApprove bool
)

// ImportFeedCmd submits every item of an RSS/Atom/JSON feed.
var ImportFeedCmd = &cobra.Command{
	Use:   "import-feed [feed-url]",
	Short: "Submit every link of an RSS, Atom or JSON feed.",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		a, err := openApp()
		if err != nil {
			cmd.Log.Fatalf("Failed to open store: %v", err)
		}
		defer a.store.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		req := workers.ImportRequest{SubmittedBy: importUser, Approve: importApprove}
		if importTopics != "" {
			req.Topics = strings.Split(importTopics, ",")
		}
		importer := workers.NewFeedImporter(a.links, cmd.Cfg.Import.WorkerCount, cmd.Cfg.Metadata.UserAgent, cmd.Log)
		res, err := importer.ImportURL(ctx, args[0], req)
		if err != nil {
			cmd.Log.Fatalf("Feed import failed: %v", err)
		}
		fmt.Printf("%d éléments: %d importés, %d doublons, %d échecs.\n",
			res.Items, res.Imported, res.Duplicates, res.Failed)
	},
}

func init() {
	ImportFeedCmd.Flags().StringVar(&importUser, "user", "feed-import", "Submitter id recorded on imported links")
	ImportFeedCmd.Flags().StringVar(&importTopics, "topics", "", "Comma-separated topic slugs applied to every item")
	ImportFeedCmd.Flags().BoolVar(&importApprove, "approve", false, "Approve imported links immediately")

	cmd.RootCmd.AddCommand(ImportFeedCmd)
}
