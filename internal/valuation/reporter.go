package valuation

// Format is the display hint attached to printed values and table rows
type Format string

const (
	FormatNumber  Format = "#"
	FormatPercent Format = "%"
	FormatPlain   Format = ""
)

// Table is a named grid of cells. Cells hold float64 values or nil for blanks;
// RowFormats tells renderers how to display each row.
type Table struct {
	Name       string   `json:"name"`
	Rows       []string `json:"rows"`
	RowFormats []Format `json:"row_formats"`
	Columns    []string `json:"columns"`
	Data       [][]any  `json:"data"`
}

// Point is one year of a chart series
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is a labelled line of a chart
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Chart is a titled set of series
type Chart struct {
	Title  string   `json:"title"`
	Series []Series `json:"series"`
}

// Reporter receives everything a run produces
type Reporter interface {
	SetEstimatedValue(value float64, currency string)
	Print(value float64, label string, format Format)
	Warning(message string)
	Chart(chart Chart)
	Context(tables []Table)
}

// NopReporter discards everything
type NopReporter struct{}

func (NopReporter) SetEstimatedValue(float64, string) {}
func (NopReporter) Print(float64, string, Format)     {}
func (NopReporter) Warning(string)                    {}
func (NopReporter) Chart(Chart)                       {}
func (NopReporter) Context([]Table)                   {}
