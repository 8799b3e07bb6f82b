package main

import (
	"io"
	"os"

	"news_aggregator/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSourcesCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources",
		RunE: func(*cobra.Command, []string) error {
			renderSources(os.Stdout, c.cfg.Sources)
			return nil
		},
	}
}

func renderSources(w io.Writer, sources []models.Source) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Name", "URL", "Pagination", "Max Items"})
	for _, source := range sources {
		t.AppendRow(table.Row{source.ID, source.Name, source.URL, pagination(source), source.MaxItems})
	}
	t.Render()
}

func pagination(source models.Source) string {
	switch {
	case source.ListPageTemplate != "":
		return source.ListPageTemplate
	case source.ListPageURLPattern != "":
		return "discovered: " + source.ListPageURLPattern
	default:
		return "-"
	}
}
