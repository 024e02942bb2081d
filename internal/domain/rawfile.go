package domain

// RawRecord is one CSV record exactly as it appeared in the source file.
type RawRecord struct {
	// Raw holds the record bytes including its line terminator, if any.
	Raw []byte

	// Fields are the parsed cell values.
	Fields []string

	// Line is the 1-based line number where the record starts.
	Line int
}

// RawFile is a tabular input file kept in a form that allows byte-faithful
// rewriting of any subset of its rows.
type RawFile struct {
	// Path is the absolute path of the source file.
	Path string

	// RelPath is the path relative to the run's input root.
	RelPath string

	// Delimiter is the detected field separator.
	Delimiter rune

	// Header is the first record. Its Raw bytes include a leading BOM if the
	// source had one.
	Header RawRecord

	// Rows are the data records in file order. Blank lines are not rows.
	Rows []RawRecord
}

// Columns returns the header cell names.
func (f *RawFile) Columns() []string {
	return f.Header.Fields
}
