package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Item is a saved item as returned by the API
type Item struct {
	ID          string   `json:"id" yaml:"id"`
	URL         string   `json:"url" yaml:"url"`
	Title       string   `json:"title" yaml:"title"`
	Summary     string   `json:"summary" yaml:"summary"`
	Tags        []string `json:"tags" yaml:"tags"`
	Source      string   `json:"source" yaml:"source"`
	Platform    string   `json:"platform" yaml:"platform"`
	ContentType string   `json:"content_type" yaml:"content_type"`
	CreatedAt   string   `json:"created_at" yaml:"created_at"`
}

const (
	titleWidth    = 48
	platformWidth = 10
)

func printJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// fit truncates s to width display cells and pads it to exactly width
func fit(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func printItemTable(w io.Writer, items []Item) {
	for _, item := range items {
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			fit(item.Title, titleWidth),
			fit(item.Platform, platformWidth),
			strings.Join(item.Tags, ","),
			item.ID,
		)
	}
}
