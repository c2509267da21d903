package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SaveRequest is the body of POST /api/save
type SaveRequest struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

// SaveResponse is the save envelope
type SaveResponse struct {
	Success bool   `json:"success"`
	Item    *Item  `json:"item,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SaveCmd creates the save command.
func SaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <url|text...>",
		Short: "Save a link to the library",
		Long: `Saves a link. The server fetches the page and generates a title, summary and tags.
Free text is accepted too: the first http(s) URL in it is saved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSave,
	}
}

func newSaveRequest(args []string) SaveRequest {
	input := strings.TrimSpace(strings.Join(args, " "))
	if len(args) == 1 && !strings.ContainsAny(input, " \t\n") {
		return SaveRequest{URL: input}
	}
	return SaveRequest{Text: input}
}

func runSave(cmd *cobra.Command, args []string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp SaveResponse
	if err := api.Post("/api/save", newSaveRequest(args), &resp); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	if !resp.Success || resp.Item == nil {
		return fmt.Errorf("save failed: %s", resp.Error)
	}

	out := cmd.OutOrStdout()
	if outputJSON(cmd) {
		return printJSON(out, resp.Item)
	}

	item := resp.Item
	fmt.Fprintf(out, "Saved: %s\n", item.Title)
	fmt.Fprintf(out, "  %s · %s · %s\n", item.Platform, item.ContentType, item.Source)
	if len(item.Tags) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", strings.Join(item.Tags, ", "))
	}
	fmt.Fprintf(out, "  ID: %s\n", item.ID)
	return nil
}
