package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show a saved item",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var item Item
			if err := api.Get("/api/items/"+url.PathEscape(args[0]), nil, &item); err != nil {
				return fmt.Errorf("failed to get item: %w", err)
			}

			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), item)
			}
			return printYAML(cmd.OutOrStdout(), item)
		},
	}
}

// RelatedAPIResponse represents the related items response.
type RelatedAPIResponse struct {
	Items []Item `json:"items"`
}

// RelatedCmd creates the related command.
func RelatedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "related <id>",
		Short: "List items similar to a saved item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			query := url.Values{}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			var resp RelatedAPIResponse
			if err := api.Get("/api/items/"+url.PathEscape(args[0])+"/related", query, &resp); err != nil {
				return fmt.Errorf("failed to get related items: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, resp)
			}
			if len(resp.Items) == 0 {
				fmt.Fprintln(out, "No related items yet.")
				return nil
			}
			printItemTable(out, resp.Items)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of related items (server default 5)")

	return cmd
}
