package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/linkshelf/internal/repository"
	"github.com/cloo-solutions/linkshelf/internal/service"
	"github.com/spf13/cobra"
)

func ItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Maintain saved items",
	}

	cmd.AddCommand(ItemDeleteCmd())
	cmd.AddCommand(ItemReprocessEmbeddingsCmd())

	return cmd
}

func ItemDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item and its archived snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			snapshots, err := newSnapshotStore(ctx, rt.cfg, rt.logger)
			if err != nil {
				return err
			}

			itemSvc := service.NewItemService(repository.NewItemRepository(rt.pool), snapshots)
			if err := itemSvc.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete item: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Item deleted: %s\n", args[0])
			return nil
		},
	}
}

func ItemReprocessEmbeddingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reprocess-embeddings",
		Short: "Queue an embedding job for every item",
		Long:  "Queue an embedding job for every item. The serve process picks them up when OpenAI is configured.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			queued, err := repository.NewEmbeddingJobRepository(rt.pool).RequeueAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to queue embedding jobs: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Queued %d embedding jobs\n", queued)
			return nil
		},
	}
}
