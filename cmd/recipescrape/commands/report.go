package commands

import (
	"io"
	"time"

	"recipescrape/lib/scrapers/magimix"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderListingReport(out io.Writer, path string, result magimix.ListingResult) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Pages", "Recipes", "Elapsed", "Output"})
	t.AppendRow(table.Row{
		result.LastPage,
		len(result.Records),
		result.Elapsed.Round(time.Millisecond).String(),
		path,
	})
	t.Render()
}

func renderDetailsReport(out io.Writer, path string, result magimix.DetailResult) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Recipes", "Found", "Not found", "Elapsed", "Output"})
	t.AppendRow(table.Row{
		len(result.Records),
		len(result.Records) - result.NotFound,
		result.NotFound,
		result.Elapsed.Round(time.Millisecond).String(),
		path,
	})
	t.Render()
}
