package sqlcl

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panasenco/plsql/internal/locale"
	"github.com/panasenco/plsql/internal/query"

	"golang.org/x/sync/errgroup"
)

// Job is one connection to run the script against.
type Job struct {
	Name    string
	Connect string
}

type Summary struct {
	Successful int
	Failed     int
}

// RunAll fans one script out over jobs, at most workers subprocesses at a
// time. Reported SQL errors and invocation errors both land in the error
// map; everything else lands in the result map keyed by job name.
func (c *Client) RunAll(
	ctx context.Context, workers int, script string,
	cache *Cache, useCache bool, jobs []Job,
) (map[string]*Output, map[string]error) {
	results := make(map[string]*Output, len(jobs))
	failures := make(map[string]error)

	var mu sync.Mutex
	summary := Summary{}

	kind, err := query.IdentifyKind(script)
	if err != nil {
		slog.WarnContext(ctx, locale.L.Logs.UnknownStatementKind)
	} else {
		slog.InfoContext(ctx, locale.L.Logs.IdentifiedStatementKind, "kind", kind)
	}

	cacheable := useCache && cache != nil && err == nil && kind.IsSafe()

	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, job := range jobs {
		job := job

		g.Go(func() error {
			if cacheable {
				if out, ok := cache.Get(job.Connect, script); ok {
					slog.InfoContext(ctx, locale.L.Logs.CacheHit, "connection", job.Name)
					mu.Lock()
					results[job.Name] = out
					summary.Successful++
					mu.Unlock()
					return nil
				}
			}

			slog.InfoContext(ctx, locale.L.Logs.RunningQueryOnConn, "connection", job.Name)

			out, err := c.Run(ctx, job.Connect, script)
			if err == nil && out.Kind == KindError {
				err = &QueryError{Text: out.Err}
			}

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				slog.ErrorContext(ctx, locale.L.Logs.ErrorRunningQueryOnConn,
					"connection", job.Name, "error", err)
				failures[job.Name] = err
				summary.Failed++
				return nil
			}

			for _, line := range out.Warnings {
				slog.WarnContext(ctx, locale.L.Logs.UnterminatedQuotes,
					"connection", job.Name, "line", line)
			}

			slog.InfoContext(ctx, locale.L.Logs.QuerySuccessfulOnConn, "connection", job.Name)
			results[job.Name] = out
			summary.Successful++

			if cacheable {
				cache.Set(job.Connect, script, out)
			}

			return nil
		})
	}

	g.Wait()

	slog.InfoContext(ctx, locale.L.Logs.QuerySummary,
		"successful", summary.Successful, "failed", summary.Failed)

	return results, failures
}
