package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/ddm/internal/valuation"
	"github.com/shopspring/decimal"
)

// FormatValue renders v the way the format hint asks: two fixed decimals for
// numbers, two fixed decimals and a percent sign for fractions, shortest
// representation otherwise.
func FormatValue(v float64, f valuation.Format) string {
	d := decimal.NewFromFloat(v)
	switch f {
	case valuation.FormatNumber:
		return d.StringFixed(2)
	case valuation.FormatPercent:
		return d.Shift(2).StringFixed(2) + "%"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatCell is FormatValue for table cells; blank cells render empty.
func FormatCell(cell any, f valuation.Format) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case float64:
		return FormatValue(v, f)
	case int:
		return FormatValue(float64(v), f)
	}
	return fmt.Sprint(cell)
}

// WriteText renders the report for a terminal
func WriteText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", r.Symbol)
	if r.ValueOfStock != nil && len(r.Lines) == 0 {
		fmt.Fprintf(tw, "Estimated value (%s)\t%s\n", r.Currency, FormatValue(*r.ValueOfStock, valuation.FormatNumber))
	}
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "%s\t%s\n", l.Label, FormatValue(l.Value, l.Format))
	}
	if r.Error != "" {
		fmt.Fprintf(tw, "Error\t%s\n", r.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}

	for _, t := range r.Tables {
		fmt.Fprintln(w)
		if err := WriteTable(w, t); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable renders one table with its row labels in the first column
func WriteTable(w io.Writer, t valuation.Table) error {
	fmt.Fprintln(w, t.Name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(t.Columns, "\t"))
	for i, row := range t.Rows {
		var f valuation.Format
		if i < len(t.RowFormats) {
			f = t.RowFormats[i]
		}
		cells := make([]string, len(t.Columns))
		if i < len(t.Data) {
			for c := range cells {
				if c < len(t.Data[i]) {
					cells[c] = FormatCell(t.Data[i][c], f)
				}
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", row, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteValues renders a watchlist of value-only reports, one line each
func WriteValues(w io.Writer, reports []*Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tVALUE\tCURRENCY\tSTATUS\t")
	for _, r := range reports {
		value, status := "-", "ok"
		if r.ValueOfStock != nil {
			value = FormatValue(*r.ValueOfStock, valuation.FormatNumber)
		}
		if r.Error != "" {
			status = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Symbol, value, r.Currency, status)
	}
	return tw.Flush()
}
