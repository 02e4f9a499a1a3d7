package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// newTable returns a table writer with the given header row
func newTable(header ...interface{}) table.Writer {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row(header))
	return w
}

func renderTable(out io.Writer, w table.Writer) {
	if rootFlags.markdown {
		fmt.Fprintln(out, w.RenderMarkdown())
		return
	}
	fmt.Fprintln(out, w.Render())
}
