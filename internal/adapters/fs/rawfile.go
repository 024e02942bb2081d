package fs

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/monetlab/monet/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// delimiterCandidates are tried in order; ties go to the earlier one.
var delimiterCandidates = []byte{',', ';', '\t', '|'}

const quote = '"'

// ReadRawFile loads the file at path as a RawFile. rel is the path relative
// to the run's input root.
func ReadRawFile(path, rel string) (*domain.RawFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseRawFile(data)
	if err != nil {
		return nil, err
	}
	f.Path = path
	f.RelPath = rel
	return f, nil
}

// ParseRawFile splits data into verbatim records. Each record keeps its exact
// bytes, line terminator included, so that any subset of rows can be written
// back unchanged.
func ParseRawFile(data []byte) (*domain.RawFile, error) {
	body := data
	var bom []byte
	if bytes.HasPrefix(body, utf8BOM) {
		bom = utf8BOM
		body = body[len(utf8BOM):]
	}

	delim := detectDelimiter(firstLine(body))
	records := splitRecords(body, delim)
	if len(records) == 0 {
		return nil, errors.New("file is empty")
	}

	f := &domain.RawFile{Delimiter: rune(delim)}
	for i, rec := range records {
		fields, err := parseFields(rec.Raw, delim)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", rec.Line, err)
		}
		rec.Fields = fields
		if i == 0 {
			if len(bom) > 0 {
				raw := make([]byte, 0, len(bom)+len(rec.Raw))
				raw = append(raw, bom...)
				rec.Raw = append(raw, rec.Raw...)
			}
			f.Header = rec
			continue
		}
		f.Rows = append(f.Rows, rec)
	}
	return f, nil
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i]
	}
	return b
}

// detectDelimiter counts candidate separators outside quotes in the header
// line and returns the most frequent one. A single-column header yields ','.
func detectDelimiter(line []byte) byte {
	counts := make(map[byte]int, len(delimiterCandidates))
	inQuote := false
	for _, c := range line {
		if c == quote {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		for _, d := range delimiterCandidates {
			if c == d {
				counts[d]++
			}
		}
	}
	best, bestN := byte(','), 0
	for _, d := range delimiterCandidates {
		if counts[d] > bestN {
			best, bestN = d, counts[d]
		}
	}
	return best
}

// splitRecords cuts body into records at line feeds that are not inside a
// quoted field. Blank records are dropped.
func splitRecords(body []byte, delim byte) []domain.RawRecord {
	var out []domain.RawRecord
	start, line, startLine := 0, 1, 1
	inQuote, fieldStart := false, true

	emit := func(end int) {
		raw := body[start:end]
		if len(bytes.TrimSpace(raw)) > 0 {
			out = append(out, domain.RawRecord{Raw: raw, Line: startLine})
		}
		start = end
		startLine = line
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case inQuote:
			if c == quote {
				if i+1 < len(body) && body[i+1] == quote {
					i++
					continue
				}
				inQuote = false
			} else if c == '\n' {
				line++
			}
		case c == quote && fieldStart:
			inQuote = true
			fieldStart = false
		case c == delim:
			fieldStart = true
		case c == '\n':
			line++
			fieldStart = true
			emit(i + 1)
		default:
			fieldStart = false
		}
	}
	if start < len(body) {
		emit(len(body))
	}
	return out
}

func parseFields(raw []byte, delim byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = rune(delim)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	return fields, err
}
