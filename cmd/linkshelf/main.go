package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/linkshelf/internal/cli/client"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "linkshelf",
		Short: "linkshelf CLI - save links and browse your library",
		Long: `linkshelf CLI saves links to your library and lists, filters and shows saved items.

Environment variables:
  LINKSHELF_API_URL   API base URL (default: http://localhost:8080)`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")

	rootCmd.AddCommand(client.SaveCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.RelatedCmd())
	rootCmd.AddCommand(client.TagsCmd())
	rootCmd.AddCommand(client.PlatformsCmd())
	rootCmd.AddCommand(client.SourcesCmd())
	rootCmd.AddCommand(client.ConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
