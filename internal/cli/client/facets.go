package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// TagsCmd lists every tag in use.
func TagsCmd() *cobra.Command {
	return facetCmd("tags", "List every tag in use")
}

// PlatformsCmd lists the platforms in use.
func PlatformsCmd() *cobra.Command {
	return facetCmd("platforms", "List the platforms in use")
}

// SourcesCmd lists the sources in use.
func SourcesCmd() *cobra.Command {
	return facetCmd("sources", "List the sources in use")
}

func facetCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp map[string][]string
			if err := api.Get("/api/"+name, nil, &resp); err != nil {
				return fmt.Errorf("failed to list %s: %w", name, err)
			}

			values := resp[name]
			if values == nil {
				values = []string{}
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, values)
			}
			for _, v := range values {
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}
}
