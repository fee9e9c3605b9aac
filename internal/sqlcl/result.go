package sqlcl

// Kind is the classification of the client's captured output. Exactly one
// applies to any output; Classify picks the first match in declaration order.
type Kind int

const (
	// KindEmpty is output that is empty or entirely whitespace.
	KindEmpty Kind = iota
	// KindError is output carrying one of the client's error signatures.
	KindError
	// KindNoRows is a successful query that selected zero rows.
	KindNoRows
	// KindMessage is informational output, such as
	// "PL/SQL procedure successfully completed.".
	KindMessage
	// KindTable is CSV-formatted tabular output.
	KindTable
)

func (k Kind) String() string {
	return []string{"empty", "error", "no rows", "message", "table"}[k]
}

// Row maps disambiguated header names to string values. Every row of a table
// has exactly one entry per header name.
type Row map[string]string

type Table struct {
	Header []string
	Rows   []Row
}

// Output is the parsed form of one client invocation's captured text.
type Output struct {
	Kind  Kind
	Err   string   // KindError: verbatim client error text
	Lines []string // KindMessage: non-blank output lines in order
	Table *Table   // KindTable

	// Warnings lists data lines with an odd number of quote characters,
	// verbatim. Non-fatal.
	Warnings []string
}

// QueryError is a SQL/PL-SQL error reported by the client itself, carrying
// its message text unchanged.
type QueryError struct {
	Text string
}

func (e *QueryError) Error() string {
	return e.Text
}

// Shape dispatches on the output kind. Empty and no-rows outcomes yield nil
// without error; a classified error yields a *QueryError. With scalar set, a
// table collapses to the first column of its first row.
func (o *Output) Shape(scalar bool) (any, error) {
	switch o.Kind {
	case KindEmpty, KindNoRows:
		return nil, nil
	case KindError:
		return nil, &QueryError{Text: o.Err}
	case KindMessage:
		return o.Lines, nil
	case KindTable:
		if !scalar {
			return o.Table.Rows, nil
		}
		if len(o.Table.Rows) == 0 {
			return nil, nil
		}
		return o.Table.Rows[0][o.Table.Header[0]], nil
	}

	return nil, nil
}
