package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/panasenco/plsql/internal/sqlcl"
)

// CSV writes the tables back out as CSV. Single-file mode stacks all
// connections into one file with a connection column; otherwise each
// connection gets its own name-suffixed file.
func CSV(
	ctx context.Context, data map[string]*sqlcl.Table,
	output string, options Options,
) error {
	if options.SingleFile {
		return csvSingleFile(ctx, data, output, options.ConnectionColumn)
	}

	for name, table := range data {
		outputExt := filepath.Ext(output)
		target := strings.Replace(output, outputExt, fmt.Sprintf("_%s%s", name, outputExt), 1)

		if err := csvWriteFile(ctx, target, table.Header, tableRecords(table, "", "")); err != nil {
			return err
		}
	}

	return nil
}

func csvSingleFile(
	ctx context.Context, data map[string]*sqlcl.Table,
	output string, connectionColumn string,
) error {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	var header []string
	var records [][]string

	for _, name := range names {
		table := data[name]
		if header == nil {
			header = append(append([]string{}, table.Header...), connectionColumn)
		}
		records = append(records, tableRecords(table, connectionColumn, name)...)
	}

	return csvWriteFile(ctx, output, header, records)
}

func tableRecords(table *sqlcl.Table, connectionColumn string, connectionName string) [][]string {
	records := make([][]string, 0, len(table.Rows))

	for _, row := range table.Rows {
		record := make([]string, 0, len(table.Header)+1)
		for _, name := range table.Header {
			record = append(record, row[name])
		}
		if connectionColumn != "" {
			record = append(record, connectionName)
		}
		records = append(records, record)
	}

	return records
}

func csvWriteFile(ctx context.Context, path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		slog.ErrorContext(ctx, "Error creating file", "error", err)
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}

	w.Flush()

	return w.Error()
}
