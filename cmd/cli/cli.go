package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/panasenco/plsql/internal/config"
	"github.com/panasenco/plsql/internal/export"
	"github.com/panasenco/plsql/internal/locale"
	"github.com/panasenco/plsql/internal/query"
	"github.com/panasenco/plsql/internal/sqlcl"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli-altsrc/v3"
	toml "github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var outputFormats = []string{"xlsx", "csv", "json"}

func validateOutputFormat(format string, l *locale.Locale) error {
	if !slices.Contains(outputFormats, strings.ToLower(format)) {
		return fmt.Errorf(l.Errors.OutputFormatNotImpl, format)
	}
	return nil
}

// PlSql builds and runs the root command. A classified SQL error exits
// non-zero with the client's verbatim error text.
func PlSql(cfg *config.Config) {
	if err := New(cfg).Run(context.Background(), os.Args); err != nil {
		var qerr *sqlcl.QueryError
		if errors.As(err, &qerr) {
			fmt.Fprintln(os.Stderr, qerr.Text)
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func New(cfg *config.Config) *cli.Command {
	var environment string
	var configPath string
	var connect string
	var connections []string
	var outputFormat string
	var scalar bool
	var dryRun bool
	var commit bool
	var noCache bool
	var queryFile string
	var noSingleSheet bool
	var noSingleFile bool

	l, err := locale.Load(cfg.Locale)
	if err != nil {
		log.Fatal(err)
	}

	environments := []string{"production", "replica", "staging"}

	client := sqlcl.NewClient(cfg)

	var cache *sqlcl.Cache
	if cfg.Cache.UseCache {
		cache = sqlcl.NewCache(cfg.Cache.MaxAge)
	}

	cmd := &cli.Command{
		Name:        "plsql",
		Description: l.CLI.Description,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Value:       "./config/config.toml",
				Usage:       l.CLI.Flags.Config,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "environment",
				Aliases:     []string{"e"},
				Value:       "replica",
				Usage:       l.CLI.Flags.Environment,
				Destination: &environment,
				Sources:     cli.NewValueSourceChain(toml.TOML("environment", altsrc.NewStringPtrSourcer(&configPath))),
				Action: func(ctx context.Context, c *cli.Command, s string) error {
					if !slices.Contains(environments, strings.ToLower(s)) {
						return fmt.Errorf(l.Errors.InvalidEnvironment)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:        "connect",
				Aliases:     []string{"c"},
				Usage:       l.CLI.Flags.Connect,
				Destination: &connect,
			},
			&cli.StringSliceFlag{
				Name:        "connections",
				Usage:       l.CLI.Flags.Connections,
				Sources:     cli.NewValueSourceChain(toml.TOML("connections", altsrc.NewStringPtrSourcer(&configPath))),
				Destination: &connections,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     l.CLI.Commands.Run,
				ArgsUsage: l.CLI.Args.Run,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "scalar",
						Aliases:     []string{"s"},
						Usage:       l.CLI.Flags.Scalar,
						Destination: &scalar,
					},
					&cli.BoolFlag{
						Name:        "dry-run",
						Aliases:     []string{"what-if"},
						Usage:       l.CLI.Flags.DryRun,
						Destination: &dryRun,
					},
					&cli.BoolFlag{
						Name:        "commit",
						Usage:       l.CLI.Flags.Commit,
						Destination: &commit,
					},
					&cli.BoolFlag{
						Name:        "no-cache",
						Usage:       l.CLI.Flags.NoCache,
						Destination: &noCache,
					},
					&cli.StringFlag{
						Name:        "file",
						Aliases:     []string{"f"},
						Usage:       l.CLI.Flags.File,
						Destination: &queryFile,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					script, err := readScript(c.Args().Get(0), queryFile, commit, l)
					if err != nil {
						return err
					}

					if dryRun {
						fmt.Print(script)
						return nil
					}

					jobs, err := resolveJobs(cfg, client, connect, connections, environment, l)
					if err != nil {
						return err
					}

					warnUncommittedDML(ctx, script, commit)

					results, failures := client.RunAll(
						ctx, int(cfg.MaxWorkers), script, cache, !noCache, jobs)

					printResults(jobs, results, scalar)

					return failuresError(failures)
				},
			},
			{
				Name:      "export",
				Usage:     l.CLI.Commands.Export,
				ArgsUsage: l.CLI.Args.Export,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output-format",
						Usage: l.CLI.Flags.OutputFormat,
						Action: func(ctx context.Context, c *cli.Command, s string) error {
							return validateOutputFormat(s, l)
						},
						Destination: &outputFormat,
					},
					&cli.BoolFlag{
						Name:        "no-cache",
						Usage:       l.CLI.Flags.NoCache,
						Destination: &noCache,
					},
					&cli.StringFlag{
						Name:        "file",
						Aliases:     []string{"f"},
						Usage:       l.CLI.Flags.File,
						Destination: &queryFile,
					},
				},
				MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{{
					Flags: [][]cli.Flag{
						{
							&cli.BoolFlag{
								Name:        "no-single-sheet",
								Usage:       l.CLI.Flags.NoSingleSheet,
								Value:       false,
								Destination: &noSingleSheet,
							},
						},
						{
							&cli.BoolFlag{
								Name:        "no-single-file",
								Usage:       l.CLI.Flags.NoSingleFile,
								Value:       false,
								Destination: &noSingleFile,
							},
						},
					},
				}},
				Action: func(ctx context.Context, c *cli.Command) error {
					script, err := readScript(c.Args().Get(0), queryFile, false, l)
					if err != nil {
						return err
					}

					savePath := c.Args().Get(1)
					if outputFormat == "" {
						outputFormat = filepath.Ext(savePath)
						if outputFormat == "" || outputFormat == "." {
							return fmt.Errorf(l.Errors.OutputFormatEmpty)
						}
						outputFormat = outputFormat[1:]
						if err := validateOutputFormat(outputFormat, l); err != nil {
							return err
						}
					}

					jobs, err := resolveJobs(cfg, client, connect, connections, environment, l)
					if err != nil {
						return err
					}

					results, failures := client.RunAll(
						ctx, int(cfg.MaxWorkers), script, cache, !noCache, jobs)

					tables := make(map[string]*sqlcl.Table)
					for name, out := range results {
						if out.Kind == sqlcl.KindTable {
							tables[name] = out.Table
						}
					}
					if len(tables) == 0 {
						return fmt.Errorf(l.Errors.NoDataReturned)
					}

					options := export.NewOptions(noSingleFile, noSingleSheet, cfg.ConnColumn)

					switch strings.ToLower(outputFormat) {
					case "xlsx":
						err = export.Excel(ctx, tables, savePath, options)
					case "csv":
						err = export.CSV(ctx, tables, savePath, options)
					case "json":
						err = export.JSON(ctx, tables, savePath)
					}
					if err != nil {
						return err
					}

					return failuresError(failures)
				},
			},
			{
				Name:  "check",
				Usage: l.CLI.Commands.Check,
				Action: func(ctx context.Context, c *cli.Command) error {
					jobs, err := resolveJobs(cfg, client, connect, connections, environment, l)
					if err != nil {
						return err
					}

					script := query.Normalize("select 'ok' from dual;")
					_, failures := client.RunAll(
						ctx, int(cfg.MaxWorkers), script, nil, false, jobs)

					for _, job := range jobs {
						if err, ok := failures[job.Name]; ok {
							fmt.Printf("%s: %v\n", job.Name, err)
						} else {
							fmt.Printf("%s: ok\n", job.Name)
						}
					}

					return failuresError(failures)
				},
			},
		},
	}

	return cmd
}

// readScript assembles the normalized script from the positional argument, a
// file, or piped stdin, in that order of preference.
func readScript(arg string, file string, commit bool, l *locale.Locale) (string, error) {
	var fragments []string

	switch {
	case arg != "" && arg != "-":
		fragments = append(fragments, arg)
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, string(raw))
	default:
		stat, err := os.Stdin.Stat()
		if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return "", err
			}
			fragments = append(fragments, string(raw))
		}
	}

	if commit {
		fragments = append(fragments, "commit;")
	}

	script := query.Normalize(fragments...)
	if script == "" {
		return "", fmt.Errorf(l.Errors.NoQuery)
	}

	return script, nil
}

// resolveJobs maps --connections names to connect strings through the
// config, or falls back to a single ad-hoc job from --connect / the
// environment variable.
func resolveJobs(
	cfg *config.Config, client *sqlcl.Client,
	connect string, connections []string, environment string,
	l *locale.Locale,
) ([]sqlcl.Job, error) {
	if len(connections) == 0 {
		resolved, err := client.ResolveConnect(connect)
		if err != nil {
			return nil, fmt.Errorf(l.Errors.NoConnectString, cfg.ConnectEnvVar)
		}
		return []sqlcl.Job{{Name: "default", Connect: resolved}}, nil
	}

	jobs := make([]sqlcl.Job, 0, len(connections))
	for _, name := range connections {
		conn := cfg.GetConnection(name)
		if conn == nil {
			return nil, fmt.Errorf(l.Errors.UnknownConnection, name)
		}

		connectString := conn.ConnectString(environment)
		if connectString == "" {
			slog.Warn(locale.L.Logs.EnvironmentDisabled,
				"connection", name, "environment", environment)
			continue
		}

		jobs = append(jobs, sqlcl.Job{Name: name, Connect: connectString})
	}

	return jobs, nil
}

func warnUncommittedDML(ctx context.Context, script string, commit bool) {
	kind, err := query.IdentifyKind(script)
	if err == nil && kind == query.DML && !commit {
		slog.WarnContext(ctx, locale.L.Logs.DmlWithoutCommit)
	}
}

// printResults renders each connection's shaped result. Scalars and message
// lines print as plain text; tables render with go-pretty.
func printResults(jobs []sqlcl.Job, results map[string]*sqlcl.Output, scalar bool) {
	multi := len(jobs) > 1

	for _, job := range jobs {
		out, ok := results[job.Name]
		if !ok {
			continue
		}

		if multi {
			fmt.Printf("-- %s\n", job.Name)
		}

		shaped, err := out.Shape(scalar)
		if err != nil {
			continue
		}

		switch v := shaped.(type) {
		case nil:
		case string:
			fmt.Println(v)
		case []string:
			for _, line := range v {
				fmt.Println(line)
			}
		case []sqlcl.Row:
			renderTable(out.Table.Header, v)
		}
	}
}

func renderTable(header []string, rows []sqlcl.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	headerRow := make(table.Row, len(header))
	for i, name := range header {
		headerRow[i] = name
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		dataRow := make(table.Row, len(header))
		for i, name := range header {
			dataRow[i] = row[name]
		}
		t.AppendRow(dataRow)
	}

	t.Render()
}

// failuresError folds per-connection failures into one error. A single
// reported SQL error is surfaced verbatim so the exit path can print it
// unchanged.
func failuresError(failures map[string]error) error {
	if len(failures) == 0 {
		return nil
	}

	if len(failures) == 1 {
		for _, err := range failures {
			if qerr, ok := err.(*sqlcl.QueryError); ok {
				return qerr
			}
			return err
		}
	}

	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %v\n", name, failures[name])
	}

	return fmt.Errorf("%s", strings.TrimSuffix(b.String(), "\n"))
}
