package locale

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type CliFlags struct {
	Config        string `toml:"config"`
	Environment   string `toml:"environment"`
	Connect       string `toml:"connect"`
	Connections   string `toml:"connections"`
	Scalar        string `toml:"scalar"`
	DryRun        string `toml:"dry_run"`
	Commit        string `toml:"commit"`
	File          string `toml:"file"`
	NoCache       string `toml:"no_cache"`
	OutputFormat  string `toml:"output_format"`
	NoSingleSheet string `toml:"no_single_sheet"`
	NoSingleFile  string `toml:"no_single_file"`
}

type CliCommands struct {
	Run    string `toml:"run"`
	Export string `toml:"export"`
	Check  string `toml:"check"`
}

type CliArgs struct {
	Run    string `toml:"run"`
	Export string `toml:"export"`
}

type CliSection struct {
	Description string      `toml:"description"`
	Flags       CliFlags    `toml:"flags"`
	Commands    CliCommands `toml:"commands"`
	Args        CliArgs     `toml:"args"`
}

type ErrorsSection struct {
	InvalidEnvironment  string `toml:"invalid_environment"`
	OutputFormatNotImpl string `toml:"output_format_not_implemented"`
	OutputFormatEmpty   string `toml:"output_format_empty"`
	NoQuery             string `toml:"no_query"`
	NoConnectString     string `toml:"no_connect_string"`
	UnknownConnection   string `toml:"unknown_connection"`
	QueryFailed         string `toml:"query_failed"`
	NoDataReturned      string `toml:"no_data_returned"`
}

type LogsSection struct {
	IdentifiedStatementKind string `toml:"identified_statement_kind"`
	UnknownStatementKind    string `toml:"unknown_statement_kind"`
	DmlWithoutCommit        string `toml:"dml_without_commit"`
	RunningQueryOnConn      string `toml:"running_query_on_conn"`
	QuerySuccessfulOnConn   string `toml:"query_successful_on_conn"`
	ErrorRunningQueryOnConn string `toml:"error_running_query_on_conn"`
	QuerySummary            string `toml:"query_summary"`
	UnterminatedQuotes      string `toml:"unterminated_quotes"`
	CacheHit                string `toml:"cache_hit"`
	EnvironmentDisabled     string `toml:"environment_disabled"`
	NoHostSpecified         string `toml:"no_host_specified"`
}

type Locale struct {
	CLI    CliSection    `toml:"cli"`
	Errors ErrorsSection `toml:"errors"`
	Logs   LogsSection   `toml:"logs"`
}

// L is the active locale. Load replaces it; until then the built-in
// en_US strings are used.
var L = Default()

func Default() *Locale {
	return &Locale{
		CLI: CliSection{
			Description: "Pipes SQL and PL/SQL scripts through Oracle SQLcl and shapes its CSV output",
			Flags: CliFlags{
				Config:        "Path to the configuration file",
				Environment:   "Environment to resolve named connections against",
				Connect:       "Connection string passed to the client (falls back to the configured environment variable)",
				Connections:   "Named connections from the connections file to run against",
				Scalar:        "Return only the first column of the first row",
				DryRun:        "Print the normalized query instead of executing it",
				Commit:        "Append a COMMIT to the script",
				File:          "Read the query from a file",
				NoCache:       "Bypass the query result cache",
				OutputFormat:  "Output format (xlsx, csv or json)",
				NoSingleSheet: "Write one sheet per connection",
				NoSingleFile:  "Write one file per connection",
			},
			Commands: CliCommands{
				Run:    "Run a query and print the shaped result",
				Export: "Run a query and export the results to a file",
				Check:  "Probe each selected connection",
			},
			Args: CliArgs{
				Run:    "[query]",
				Export: "[query] [output]",
			},
		},
		Errors: ErrorsSection{
			InvalidEnvironment:  "invalid environment",
			OutputFormatNotImpl: "output format %s is not implemented",
			OutputFormatEmpty:   "output format could not be inferred from the output path",
			NoQuery:             "no query given: pass it as an argument, via --file or on stdin",
			NoConnectString:     "no connection string: use --connect or set %s",
			UnknownConnection:   "connection %s is not defined in the connections file",
			QueryFailed:         "query failed on %s",
			NoDataReturned:      "no data returned",
		},
		Logs: LogsSection{
			IdentifiedStatementKind: "Identified statement kind",
			UnknownStatementKind:    "Unable to identify statement kind",
			DmlWithoutCommit:        "Running DML without --commit; changes may not persist",
			RunningQueryOnConn:      "Running query on connection",
			QuerySuccessfulOnConn:   "Query successful on connection",
			ErrorRunningQueryOnConn: "Error running query on connection",
			QuerySummary:            "Query run summary",
			UnterminatedQuotes:      "Lines with unterminated quotes; strip control characters from the source values",
			CacheHit:                "Query result found in cache",
			EnvironmentDisabled:     "Environment is disabled",
			NoHostSpecified:         "No host specified for environment",
		},
	}
}

func DetectSystemLocale() string {
	lang := os.Getenv("LANG")
	if lang == "" {
		return "en_US"
	}

	cleanLang := strings.Split(lang, ".")[0]

	return strings.ReplaceAll(cleanLang, "-", "_")
}

// Load reads the locale file for localeName and makes it the active locale.
// A missing file falls back to en_US, then to the built-in defaults.
func Load(localeName string) (*Locale, error) {
	if localeName == "" || strings.ToLower(localeName) == "auto" {
		localeName = DetectSystemLocale()
	}

	localePath := filepath.Join("config", "locales", fmt.Sprintf("%s.toml", localeName))

	if _, err := os.Stat(localePath); os.IsNotExist(err) {
		localePath = filepath.Join("config", "locales", "en_US.toml")
	}

	if _, err := os.Stat(localePath); os.IsNotExist(err) {
		L = Default()
		return L, nil
	}

	l := Default()
	if _, err := toml.DecodeFile(localePath, l); err != nil {
		return nil, fmt.Errorf("failed to load locale file %s: %w", localePath, err)
	}

	L = l

	return l, nil
}
