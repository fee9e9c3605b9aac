package sqlcl

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/panasenco/plsql/internal/config"

	"github.com/google/shlex"
)

// Executor runs one external command to completion with stdout and stderr
// captured as a single stream.
type Executor interface {
	Execute(ctx context.Context, name string, args []string, env []string, stdin io.Reader) ([]byte, error)
}

type systemExecutor struct{}

func (systemExecutor) Execute(ctx context.Context, name string, args []string, env []string, stdin io.Reader) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	cmd.Stdin = stdin

	return cmd.CombinedOutput()
}

// Client pipes scripts into the external SQLcl binary and parses what comes
// back. One Run is one subprocess lifetime; output is fully buffered before
// parsing starts.
type Client struct {
	command       string
	connectEnvVar string
	timeout       time.Duration
	exec          Executor
	preamble      PreambleProvider
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		command:       cfg.ClientCommand,
		connectEnvVar: cfg.ConnectEnvVar,
		timeout:       time.Duration(cfg.Timeout) * time.Second,
		exec:          systemExecutor{},
		preamble:      TempPreamble{},
	}
}

// WithExecutor replaces the subprocess boundary, for tests.
func (c *Client) WithExecutor(e Executor) *Client {
	c.exec = e
	return c
}

// WithPreamble replaces the login.sql provider, for tests.
func (c *Client) WithPreamble(p PreambleProvider) *Client {
	c.preamble = p
	return c
}

// ResolveConnect falls back to the configured environment variable when no
// explicit connection string was given.
func (c *Client) ResolveConnect(connect string) (string, error) {
	if connect != "" {
		return connect, nil
	}
	if v := os.Getenv(c.connectEnvVar); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no connection string given and %s is not set", c.connectEnvVar)
}

// Run executes the normalized script against connect and classifies the
// captured output. The returned error covers invocation failures only;
// errors the client itself reports come back classified as KindError.
func (c *Client) Run(ctx context.Context, connect, script string) (*Output, error) {
	connect, err := c.ResolveConnect(connect)
	if err != nil {
		return nil, err
	}

	argv, err := shlex.Split(c.command)
	if err != nil || len(argv) == 0 {
		return nil, fmt.Errorf("invalid client command %q", c.command)
	}

	dir, cleanup, err := c.preamble.Provide()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// SQLPATH is set on the child only; the parent environment is never
	// touched, so concurrent runs cannot clobber each other's preamble.
	env := append(os.Environ(), "SQLPATH="+dir)

	args := append(argv[1:], connect)
	out, err := c.exec.Execute(ctx, argv[0], args, env, scriptReader(script))
	if err != nil {
		// SQL errors arrive in-band as text; an exec error means the
		// client itself could not run (missing binary, timeout, kill).
		if ctx.Err() != nil {
			return nil, fmt.Errorf("client timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("error invoking %s: %w", argv[0], err)
	}

	return Classify(string(out)), nil
}

// scriptReader terminates the piped script with an exit so the client does
// not hang waiting for more input.
func scriptReader(script string) io.Reader {
	return strings.NewReader(script + "exit\n")
}
