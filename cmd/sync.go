package main

import (
	"io"
	"os"

	"news_aggregator/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const titleWidth = 60

func newSyncCommand(c *cli) *cobra.Command {
	var (
		offset int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one forced aggregation and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer d.close()

			var window *models.PageWindow
			if cmd.Flags().Changed("offset") || cmd.Flags().Changed("limit") {
				window = &models.PageWindow{Offset: max(0, offset), Limit: max(1, limit)}
			}

			result := d.aggregator.Run(cmd.Context(), true, window)
			renderResult(os.Stdout, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "list-page offset")
	cmd.Flags().IntVar(&limit, "limit", 15, "number of list pages to crawl")
	return cmd
}

func renderResult(w io.Writer, result models.AggregationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: titleWidth},
	})

	t.AppendHeader(table.Row{"Date", "Source", "Title", "URL"})
	for _, item := range result.Items {
		t.AppendRow(table.Row{item.Date, item.SourceID, item.Title, item.URL})
	}
	t.AppendFooter(table.Row{"", "", "Items", len(result.Items)})
	t.Render()

	if len(result.Errors) == 0 {
		return
	}

	e := table.NewWriter()
	e.SetOutputMirror(w)
	e.SetStyle(table.StyleLight)
	e.AppendHeader(table.Row{"Source", "Error"})
	for _, se := range result.Errors {
		e.AppendRow(table.Row{se.SourceID, se.Message})
	}
	e.Render()
}
