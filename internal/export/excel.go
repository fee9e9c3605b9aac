package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/panasenco/plsql/internal/sqlcl"

	"github.com/xuri/excelize/v2"
)

// Styles are int because excelize.File.NewStyle() returns style index
type Styles struct {
	Header           int
	ConnectionColumn int
}

func NewStyles(f *excelize.File) (*Styles, error) {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	connectionColumnStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Italic: true},
	})
	if err != nil {
		return nil, err
	}

	return &Styles{
		Header:           headerStyle,
		ConnectionColumn: connectionColumnStyle,
	}, nil
}

type Options struct {
	SingleFile       bool
	SingleSheet      bool
	ConnectionColumn string
}

func NewOptions(noSingleFile bool, noSingleSheet bool, connectionColumn string) Options {
	return Options{
		SingleFile:       !noSingleFile,
		SingleSheet:      !noSingleSheet,
		ConnectionColumn: connectionColumn,
	}
}

func Excel(
	ctx context.Context, data map[string]*sqlcl.Table,
	output string, options Options,
) error {
	switch {
	case options.SingleFile && !options.SingleSheet:
		return excelSingleFile(ctx, data, output)
	case !options.SingleFile && options.SingleSheet:
		return excelFilePerConnection(ctx, data, output)
	default:
		return excelSingleFileAndSheet(ctx, data, output, options.ConnectionColumn)
	}
}

// One file per connection, suffixing the connection name onto the output
// path.
func excelFilePerConnection(
	ctx context.Context, data map[string]*sqlcl.Table,
	output string,
) error {
	sheetName := "Data"
	for name, table := range data {
		f := excelize.NewFile()
		f.SetSheetName(f.GetSheetName(0), sheetName)
		colsWidth, err := writeTableToSheet(f, sheetName, table, "", "")
		if err != nil {
			slog.ErrorContext(ctx, "Error writing data to sheet", "error", err)
			return err
		}

		outputExt := filepath.Ext(output)
		target := strings.Replace(output, outputExt, fmt.Sprintf("_%s%s", name, outputExt), 1)

		for i, colWidth := range colsWidth {
			colName, _ := excelize.ColumnNumberToName(i + 1)
			f.SetColWidth(sheetName, colName, colName, colWidth)
		}
		freezeHeader(f, sheetName)

		if err := f.SaveAs(target); err != nil {
			slog.ErrorContext(ctx, "Error saving file", "error", err)
			return err
		}
		if err := f.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing file", "error", err)
		}
	}

	return nil
}

// One file, one sheet per connection.
func excelSingleFile(ctx context.Context, data map[string]*sqlcl.Table, output string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing file", "error", err)
		}
	}()

	for name, table := range data {
		f.NewSheet(name)
		colsWidth, err := writeTableToSheet(f, name, table, "", "")
		if err != nil {
			slog.ErrorContext(ctx, "Error writing data to sheet", "error", err)
			return err
		}

		for i, colWidth := range colsWidth {
			colName, _ := excelize.ColumnNumberToName(i + 1)
			f.SetColWidth(name, colName, colName, colWidth)
		}

		freezeHeader(f, name)
	}

	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(output); err != nil {
		slog.ErrorContext(ctx, "Error saving file", "error", err)
		return err
	}

	return nil
}

// One file, one sheet, with a column naming the source connection.
func excelSingleFileAndSheet(
	ctx context.Context, data map[string]*sqlcl.Table,
	output string, connectionColumnName string,
) error {
	sheetName := "Data"
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing file", "error", err)
		}
	}()

	f.SetSheetName(f.GetSheetName(0), sheetName)
	f.SetActiveSheet(0)

	globalWidths := make(map[int]float64)

	for name, table := range data {
		colsWidth, err := writeTableToSheet(f, sheetName, table, connectionColumnName, name)
		if err != nil {
			slog.ErrorContext(ctx, "Error writing data to sheet", "error", err)
			return err
		}

		for idx, width := range colsWidth {
			if globalWidths[idx] < width {
				globalWidths[idx] = width
			}
		}
	}

	for idx, width := range globalWidths {
		colName, _ := excelize.ColumnNumberToName(idx + 1)
		f.SetColWidth(sheetName, colName, colName, width)
	}

	freezeHeader(f, sheetName)
	if err := f.SaveAs(output); err != nil {
		slog.ErrorContext(ctx, "Error saving file", "error", err)
		return err
	}

	return nil
}

func writeTableToSheet(
	f *excelize.File, sheetName string,
	table *sqlcl.Table, connectionColumn string, connectionName string,
) (map[int]float64, error) {
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("no data found")
	}

	styles, err := NewStyles(f)
	if err != nil {
		return nil, err
	}

	header := table.Header
	if connectionColumn != "" {
		header = append(append([]string{}, table.Header...), connectionColumn)
	}

	// Appending below existing rows keeps multiple connections stackable
	// on one sheet.
	startRow, err := nextFreeRow(f, sheetName)
	if err != nil {
		return nil, err
	}
	if startRow == 1 {
		headerRow := make([]any, len(header))
		for i, name := range header {
			headerRow[i] = name
		}

		if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
			return nil, err
		}

		lastHeaderCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheetName, "A1", lastHeaderCell, styles.Header); err != nil {
			return nil, err
		}

		startRow = 2
	}

	colsWidth := make(map[int]float64, len(header))
	for i, name := range header {
		colsWidth[i] = max(colsWidth[i], float64(len(name)))
	}

	for i, row := range table.Rows {
		rowData := make([]any, len(header))

		for j, name := range header {
			var val string
			if connectionColumn != "" && name == connectionColumn {
				val = connectionName
			} else {
				val = row[table.Header[j]]
			}

			rowData[j] = val
			colsWidth[j] = max(colsWidth[j], float64(len(val)))
		}

		cell, _ := excelize.CoordinatesToCellName(1, startRow+i)
		if err := f.SetSheetRow(sheetName, cell, &rowData); err != nil {
			return nil, err
		}
	}

	if connectionColumn != "" && len(table.Rows) > 0 {
		top, _ := excelize.CoordinatesToCellName(len(header), startRow)
		bottom, _ := excelize.CoordinatesToCellName(len(header), startRow+len(table.Rows)-1)
		if err := f.SetCellStyle(sheetName, top, bottom, styles.ConnectionColumn); err != nil {
			return nil, err
		}
	}

	return colsWidth, nil
}

func nextFreeRow(f *excelize.File, sheetName string) (int, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, err
	}
	return len(rows) + 1, nil
}

func freezeHeader(f *excelize.File, sheetName string) {
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomRight",
	})
}
