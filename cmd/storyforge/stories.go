package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lamim/storyforge/internal/store"
)

func storiesCommand() *cobra.Command {
	storiesCmd := &cobra.Command{
		Use:   "stories",
		Short: "Manage saved stories",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved stories, newest first",
		Args:  cobra.NoArgs,
		RunE:  listStories,
	}
	listCmd.Flags().IntVar(&listLimit, "limit", store.DefaultListLimit, "Maximum number of stories to list")

	showCmd := &cobra.Command{
		Use:   "show <story-id>",
		Short: "Print a saved story",
		Args:  cobra.ExactArgs(1),
		RunE:  showStory,
	}
	showCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the record as JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete <story-id>",
		Short: "Delete a saved story",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteStory,
	}

	storiesCmd.AddCommand(listCmd, showCmd, deleteCmd)
	return storiesCmd
}

func withStore(fn func(ctx context.Context, st *store.Store) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	ctx := context.Background()

	st, err := store.Open(ctx, cfg.Storage.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return fn(ctx, st)
}

func listStories(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		recs, err := st.List(ctx, listLimit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No saved stories.")
			return nil
		}

		fmt.Printf("%-38s %-20s %s\n", "ID", "CREATED", "TITLE")
		fmt.Println(strings.Repeat("-", 80))
		for _, r := range recs {
			fmt.Printf("%-38s %-20s %s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Title)
		}
		return nil
	})
}

func showStory(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		rec, err := st.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rec)
		}

		fmt.Printf("%s\n", rec.Title)
		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("ID:       %s\n", rec.ID)
		fmt.Printf("Created:  %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Request:  %s\n", rec.Prompt)
		if rec.AudioPath != "" {
			fmt.Printf("Audio:    %s\n", rec.AudioPath)
		}
		fmt.Printf("Images:   %d\n", len(rec.ImagePaths))
		fmt.Println()
		fmt.Println(rec.Body)
		return nil
	})
}

func deleteStory(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		if err := st.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted story %s\n", args[0])
		return nil
	})
}
