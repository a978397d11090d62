// Package ledger records financing approvals on the Soroban ledger by running
// the contract CLI as a child process.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"financing-ledger/domain"
)

const (
	DefaultBinary   = "soroban"
	DefaultNetwork  = "testnet"
	DefaultFunction = "aprovar_financiamento"
	DefaultArgName  = "financiamento_id"
	DefaultTimeout  = 30 * time.Second

	// waitDelay bounds how long Wait keeps reading output after the CLI is
	// killed, in case a child it spawned still holds the pipes.
	waitDelay = 2 * time.Second

	redacted = "***"
)

type Config struct {
	Binary     string
	ContractID string
	// SecretKey signs the contract invocation. It is passed to the child
	// process only and never logged.
	SecretKey string
	Network   string
	Function  string
	ArgName   string
	Timeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Binary == "" {
		c.Binary = DefaultBinary
	}
	if c.Network == "" {
		c.Network = DefaultNetwork
	}
	if c.Function == "" {
		c.Function = DefaultFunction
	}
	if c.ArgName == "" {
		c.ArgName = DefaultArgName
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// CommandRunner executes name with args and returns what the process wrote
// to stdout and stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CLIInvoker runs one contract invocation per approval. It never retries.
type CLIInvoker struct {
	cfg    Config
	run    CommandRunner
	logger logrus.FieldLogger
}

func NewCLIInvoker(cfg Config, logger logrus.FieldLogger) *CLIInvoker {
	return &CLIInvoker{
		cfg:    cfg.withDefaults(),
		run:    execRunner,
		logger: logger,
	}
}

// WithRunner swaps the process runner, mainly for tests.
func (c *CLIInvoker) WithRunner(run CommandRunner) *CLIInvoker {
	c.run = run
	return c
}

func (c *CLIInvoker) args(recordID uint64, secret string) []string {
	return []string{
		"contract", "invoke",
		"--id", c.cfg.ContractID,
		"--secret-key", secret,
		"--network", c.cfg.Network,
		"--", c.cfg.Function,
		"--" + c.cfg.ArgName, strconv.FormatUint(recordID, 10),
	}
}

func (c *CLIInvoker) describe(recordID uint64) string {
	return c.cfg.Binary + " " + strings.Join(c.args(recordID, redacted), " ")
}

// InvokeApproval blocks until the CLI exits or the configured timeout
// elapses. On failure it returns a *domain.LedgerError whose Diagnostic is
// the tool's stderr.
func (c *CLIInvoker) InvokeApproval(ctx context.Context, recordID uint64) (string, error) {
	if strings.TrimSpace(c.cfg.SecretKey) == "" {
		return "", &domain.LedgerError{RecordID: recordID, Diagnostic: "ledger secret key is not configured"}
	}
	if strings.TrimSpace(c.cfg.ContractID) == "" {
		return "", &domain.LedgerError{RecordID: recordID, Diagnostic: "ledger contract id is not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	fields := logrus.Fields{
		"module":       "ledger",
		"financing_id": recordID,
		"network":      c.cfg.Network,
		"command":      c.describe(recordID),
	}

	started := time.Now()
	stdout, stderr, err := c.run(ctx, c.cfg.Binary, c.args(recordID, c.cfg.SecretKey)...)
	fields["duration_ms"] = time.Since(started).Milliseconds()

	if err != nil {
		diagnostic := strings.TrimSpace(string(stderr))
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				diagnostic = fmt.Sprintf("timed out after %s: %s", c.cfg.Timeout, diagnostic)
			}
			if !errors.Is(err, ctxErr) {
				err = fmt.Errorf("%w: %w", ctxErr, err)
			}
		}

		c.logger.WithFields(fields).WithError(err).Error("ledger approval failed: " + diagnostic)
		return "", &domain.LedgerError{RecordID: recordID, Diagnostic: diagnostic, Err: err}
	}

	output := strings.TrimSpace(string(stdout))
	c.logger.WithFields(fields).WithField("output", output).Info("ledger approval recorded")
	return output, nil
}
