package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/cmd"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

var (
	topicName string
	topicSlug string
)

// TopicsCmd lists topics, or creates one when --name and --slug are given.
var TopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List or create topics.",
	Run: func(_ *cobra.Command, _ []string) {
		a, err := openApp()
		if err != nil {
			cmd.Log.Fatalf("Failed to open store: %v", err)
		}
		defer a.store.Close()
		ctx := context.Background()

		if topicName != "" || topicSlug != "" {
			topic, err := a.topics.Create(ctx, services.CreateTopicRequest{Name: topicName, Slug: topicSlug})
			if err != nil {
				cmd.Log.Fatalf("Failed to create topic: %v", err)
			}
			fmt.Printf("Topic créé: %s (%s)\n", topic.Name, topic.Slug)
			return
		}

		topics, err := a.topics.List(ctx)
		if err != nil {
			cmd.Log.Fatalf("Failed to list topics: %v", err)
		}
		for _, t := range topics {
			fmt.Printf("%-14s %s\n", t.Slug, t.Name)
		}
	},
}

func init() {
	TopicsCmd.Flags().StringVar(&topicName, "name", "", "Name of the topic to create")
	TopicsCmd.Flags().StringVar(&topicSlug, "slug", "", "Slug of the topic to create")

	cmd.RootCmd.AddCommand(TopicsCmd)
}
