package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docingest/internal/doctree"
)

// CSVParser handles CSV files. Data rows are grouped into sections of batchSize,
// each holding an itemised list with one item per row.
type CSVParser struct{}

// Group rows into batches of 20 for manageable chunks.
const batchSize = 20

type csvRow struct {
	cells []string
	line  int
}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows []csvRow
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				e := doctree.NewParseError("csv", doctree.Location{File: filename, Line: perr.Line, Column: perr.Column}, perr.Err.Error())
				e.Err = err
				return nil, e
			}
			return nil, doctree.NewIOError("read", filename, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, csvRow{cells: rec, line: line})
	}

	doc := doctree.New(filename, stem(filename))
	if len(rows) == 0 {
		return finish(doc)
	}

	// First row is headers.
	headers := rows[0].cells
	dataRows := rows[1:]

	for i := 0; i < len(dataRows); i += batchSize {
		end := min(i+batchSize, len(dataRows))
		batch := dataRows[i:end]

		loc := doctree.Location{File: filename, Line: batch[0].line}
		sec := doc.NewComponent(doc.Root(), doctree.KindSection, loc)
		// 1-indexed, skip header
		sec.Title().AppendText(fmt.Sprintf("Rows %d-%d", i+2, end+1))
		paragraph(sec, "Headers: "+strings.Join(headers, ", "), loc)

		list := &doctree.List{Kind: doctree.ItemisedList, Loc: loc}
		for _, row := range batch {
			var text strings.Builder
			for j, cell := range row.cells {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row.cells)-1 {
					text.WriteString(", ")
				}
			}
			rowLoc := doctree.Location{File: filename, Line: row.line}
			paragraph(list.NewItem(rowLoc), text.String(), rowLoc)
		}
		sec.AppendBlock(list)
	}
	return finish(doc)
}
