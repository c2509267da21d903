package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ListAPIResponse represents the list API response.
type ListAPIResponse struct {
	Items    []Item `json:"items"`
	HasMore  bool   `json:"hasMore"`
	NextPage *int   `json:"nextPage,omitempty"`
	Total    int    `json:"total"`
}

type listOptions struct {
	search    string
	tags      []string
	platforms []string
	sources   []string
	page      int
}

func (o listOptions) query() url.Values {
	q := url.Values{}
	if o.search != "" {
		q.Set("search", o.search)
	}
	if len(o.tags) > 0 {
		q.Set("tags", strings.Join(o.tags, ","))
	}
	if len(o.platforms) > 0 {
		q.Set("platforms", strings.Join(o.platforms, ","))
	}
	if len(o.sources) > 0 {
		q.Set("sources", strings.Join(o.sources, ","))
	}
	if o.page > 1 {
		q.Set("page", strconv.Itoa(o.page))
	}
	return q
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved items, newest first",
		Long:  "Lists saved items. Filters combine with AND; values inside one filter combine with OR.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Search title and summary")
	cmd.Flags().StringSliceVarP(&opts.tags, "tag", "t", nil, "Filter by tag (repeatable)")
	cmd.Flags().StringSliceVar(&opts.platforms, "platform", nil, "Filter by platform (repeatable)")
	cmd.Flags().StringSliceVar(&opts.sources, "source", nil, "Filter by source (repeatable)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")

	return cmd
}

func runList(cmd *cobra.Command, opts listOptions) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var listResp ListAPIResponse
	if err := api.Get("/api/items", opts.query(), &listResp); err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON(cmd) {
		return printJSON(out, listResp)
	}

	if len(listResp.Items) == 0 {
		fmt.Fprintln(out, "No items found.")
		return nil
	}

	printItemTable(out, listResp.Items)

	fmt.Fprintf(out, "\n%d of %d items\n", len(listResp.Items), listResp.Total)
	if listResp.HasMore && listResp.NextPage != nil {
		fmt.Fprintf(out, "More results available. Use --page %d\n", *listResp.NextPage)
	}
	return nil
}
