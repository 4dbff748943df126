package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook parses the first worksheet of an xlsx payload into
// canonicalized rows. The first row is treated as the header; trailing
// cells beyond the header width are dropped, short rows leave the
// missing fields empty. Fully empty rows are skipped so trailing blank
// spreadsheet rows do not become error rows.
func ReadWorkbook(payload []byte) ([]Row, error) {
	file, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	cells, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = CanonicalKey(h)
	}

	var rows []Row
	for _, line := range cells[1:] {
		raw := make(map[string]string, len(headers))
		empty := true
		for i, key := range headers {
			if key == "" {
				continue
			}
			var value string
			if i < len(line) {
				value = line[i]
			}
			if value != "" {
				empty = false
			}
			raw[key] = value
		}
		if empty {
			continue
		}
		rows = append(rows, NormalizeRow(raw))
	}
	return rows, nil
}

// WriteTemplate renders the canonical template workbook for an import
// kind as an xlsx payload.
func WriteTemplate(kind Kind) ([]byte, string, error) {
	tpl, ok := TemplateFor(kind)
	if !ok {
		return nil, "", fmt.Errorf("unknown import kind %s", kind)
	}
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	index, err := file.NewSheet(tpl.Sheet)
	if err != nil {
		return nil, "", err
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}
	for row, cells := range [][]string{tpl.Headers, tpl.Example} {
		for col, value := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, row+1)
			if err != nil {
				return nil, "", err
			}
			if err := file.SetCellValue(tpl.Sheet, cell, value); err != nil {
				return nil, "", err
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), tpl.Filename, nil
}
