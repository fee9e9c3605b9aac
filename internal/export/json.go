package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/panasenco/plsql/internal/sqlcl"
)

// JSON writes one object per connection, each holding its row maps in
// table order.
func JSON(ctx context.Context, data map[string]*sqlcl.Table, output string) error {
	doc := make(map[string][]sqlcl.Row, len(data))
	for name, table := range data {
		doc[name] = table.Rows
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		slog.ErrorContext(ctx, "Error encoding results", "error", err)
		return err
	}

	if err := os.WriteFile(output, payload, 0o644); err != nil {
		slog.ErrorContext(ctx, "Error saving file", "error", err)
		return err
	}

	return nil
}
