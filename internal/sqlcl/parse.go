package sqlcl

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
)

// noRowsMarker is the client's literal text for a successful query that
// returned nothing.
const noRowsMarker = "no rows selected"

// errorSignatures are the prefixes SQLcl puts on execution errors in CSV
// mode. Matched case-sensitively against every line, not just the first:
// login scripts and banners can prepend lines, and "Error starting at"
// follows the echoed statement.
var errorSignatures = []string{
	"Error starting at ",
	"Error Message = ",
}

// Classify parses the client's captured output into one of the five output
// kinds. Checks are ordered and the first match wins.
func Classify(raw string) *Output {
	lines := trimBlankEdges(splitLines(raw))

	if len(lines) == 0 {
		return &Output{Kind: KindEmpty}
	}

	for _, line := range lines {
		for _, sig := range errorSignatures {
			if strings.HasPrefix(line, sig) {
				return &Output{Kind: KindError, Err: strings.Join(lines, "\n")}
			}
		}
	}

	if lines[len(lines)-1] == noRowsMarker {
		return &Output{Kind: KindNoRows}
	}

	if !strings.HasPrefix(lines[0], `"`) {
		var kept []string
		for _, line := range lines {
			if strings.TrimSpace(line) != "" {
				kept = append(kept, line)
			}
		}
		return &Output{Kind: KindMessage, Lines: kept}
	}

	return parseTable(lines)
}

// parseTable handles the CSV shape. The last two lines are artifacts of the
// client's CSV mode (a blank separator and the "<N> rows selected." summary)
// and carry no data.
func parseTable(lines []string) *Output {
	if len(lines) > 2 {
		lines = lines[:len(lines)-2]
	} else {
		lines = lines[:1]
	}

	header := parseHeader(lines[0])
	data := lines[1:]

	var warnings []string
	for _, line := range data {
		if strings.Count(line, `"`)%2 == 1 {
			warnings = append(warnings, line)
		}
	}

	rows := parseRecords(data, header)
	if len(rows) == 0 {
		// Preserve the header shape: callers always get at least one
		// row object.
		blank := make(Row, len(header))
		for _, name := range header {
			blank[name] = ""
		}
		rows = []Row{blank}
	}

	return &Output{
		Kind:     KindTable,
		Table:    &Table{Header: header, Rows: rows},
		Warnings: warnings,
	}
}

// parseHeader splits the quoted header line and disambiguates duplicate
// column names by suffixing the occurrence count: A, A2, A3.
func parseHeader(line string) []string {
	tokens := strings.Split(line, `","`)

	seen := make(map[string]int, len(tokens))
	header := make([]string, 0, len(tokens))

	for _, token := range tokens {
		name := strings.TrimSuffix(strings.TrimPrefix(token, `"`), `"`)

		seen[name]++
		if n := seen[name]; n > 1 {
			name += strconv.Itoa(n)
		}
		header = append(header, name)
	}

	return header
}

// parseRecords reads the data lines as quoted CSV. Records are padded or
// truncated to header arity so every row matches the header. Mangled lines
// (raw control characters breaking the quoting) are skipped, not fatal; they
// were already reported by the odd-quote scan.
func parseRecords(data []string, header []string) []Row {
	reader := csv.NewReader(strings.NewReader(strings.Join(data, "\n")))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// trimBlankEdges removes leading and trailing blank lines as a unit, leaving
// interior blank lines alone.
func trimBlankEdges(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	return lines[start:end]
}
