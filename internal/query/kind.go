package query

import (
	"fmt"
	"strings"
)

type Kind int

const (
	DQL Kind = iota
	DML
	DDL
	PLSQL
)

func (k Kind) String() string {
	return []string{"DQL", "DML", "DDL", "PL/SQL"}[k]
}

func (k Kind) IsSafe() bool {
	return k == DQL
}

// Very dumb statement kind identifier, keyed off the first keyword.
// Good enough to warn about DML running without a commit.
func IdentifyKind(script string) (Kind, error) {
	for _, line := range strings.Split(strings.ToUpper(script), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.HasPrefix(fields[0], "--") {
			continue
		}

		switch fields[0] {
		case "SELECT", "WITH":
			return DQL, nil
		case "INSERT", "UPDATE", "DELETE", "MERGE":
			return DML, nil
		case "CREATE", "ALTER", "DROP", "TRUNCATE", "GRANT":
			return DDL, nil
		case "BEGIN", "DECLARE", "CALL", "EXEC", "EXECUTE":
			return PLSQL, nil
		}

		return 0, fmt.Errorf("unable to identify statement kind")
	}

	return 0, fmt.Errorf("unable to identify statement kind")
}
