package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gosuri/uitable"

	"github.com/diewo77/seize-billing/internal/services"
)

// printReport renders one report as an aligned text table.
func printReport(ctx context.Context, w io.Writer, reports *services.ReportService, kind services.ReportKind, f services.ReportFilter) error {
	t, err := reports.Run(ctx, kind, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, t.Title)
	fmt.Fprintln(w, renderTable(t))
	return nil
}

func renderTable(t *services.Table) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 40
	table.Wrap = true
	table.AddRow(cells(t.Columns)...)
	for _, row := range t.Rows {
		table.AddRow(cells(row)...)
	}
	return table
}

func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
