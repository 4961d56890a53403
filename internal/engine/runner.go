// Package engine invokes the external benchmark engine as a subprocess and
// extracts the structured payload from its output. The engine itself is an
// opaque black box; everything downstream works on the extracted JSON.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

// ErrNoPayload is returned when the engine output carries no JSON object.
var ErrNoPayload = errors.New("no structured payload found in engine output")

// Invoker runs one benchmark for one credential bundle and returns the raw
// engine output.
type Invoker interface {
	Invoke(ctx context.Context, benchmarkID string, env map[string]string) ([]byte, error)
}

// CLIRunner shells out to the engine binary. Each invocation is bounded by
// its own timeout so a single stuck subprocess cannot eat the whole scan
// budget, and start failures are retried briefly with exponential backoff.
type CLIRunner struct {
	Binary  string
	Timeout time.Duration
	Retries uint64
	Logger  *zap.Logger
}

// NewCLIRunner builds a runner with sane bounds applied.
func NewCLIRunner(binary string, timeout time.Duration, logger *zap.Logger) *CLIRunner {
	if binary == "" {
		binary = "steampipe"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIRunner{Binary: binary, Timeout: timeout, Retries: 2, Logger: logger}
}

// Invoke runs `<binary> check <benchmark> --output json` with the credential
// bundle layered over the process environment. A non-zero exit that still
// produced a payload is not an error: the engine exits non-zero whenever any
// control alarms.
func (r *CLIRunner) Invoke(ctx context.Context, benchmarkID string, env map[string]string) ([]byte, error) {
	var out []byte

	run := func() error {
		cctx, cancel := context.WithTimeout(ctx, r.Timeout)
		defer cancel()

		cmd := exec.CommandContext(cctx, r.Binary, "check", benchmarkID, "--output", "json")
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		out = stdout.Bytes()

		if cctx.Err() != nil {
			return backoff.Permanent(fmt.Errorf("benchmark %s timed out after %s", benchmarkID, r.Timeout))
		}
		if err != nil {
			if _, perr := ExtractPayload(out); perr == nil {
				// Controls alarmed; the payload is still usable.
				return nil
			}
			r.Logger.Sugar().Warnf("engine invocation for %s failed: %v (stderr: %s)",
				benchmarkID, err, stderr.String())
			return fmt.Errorf("engine invocation for %s failed: %w", benchmarkID, err)
		}
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.Retries)
	if err := backoff.Retry(run, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractPayload locates the outermost JSON object inside the engine output,
// stripping any non-data preamble and trailer text (progress lines, update
// notices). String literals are honored so braces inside reasons do not
// unbalance the scan.
func ExtractPayload(out []byte) ([]byte, error) {
	start := bytes.IndexByte(out, '{')
	if start < 0 {
		return nil, ErrNoPayload
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(out); i++ {
		c := out[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return out[start : i+1], nil
			}
		}
	}
	return nil, ErrNoPayload
}
