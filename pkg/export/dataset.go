package export

// Dataset is a flattened grid: one row per slot, one column per weekday.
// Title is rendered by the PDF and XLSX exporters and ignored by CSV.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Record returns the row values in header order. Missing cells are empty.
func (d Dataset) Record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}
