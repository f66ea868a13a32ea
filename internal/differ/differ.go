// Package differ runs the external line diff utility over two files.
package differ

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// #region types

// Exit codes of the diff utility.
const (
	CodeSame    = 0
	CodeDiffer  = 1
	CodeTrouble = 2
	// CodeCancelled marks an invocation cut short by its caller. It carries
	// no comparison outcome.
	CodeCancelled = -1
)

// Result is the outcome of one diff invocation.
type Result struct {
	Stderr []byte
	Stdout []byte
	Code   int
}

// Same reports whether both files were byte-identical.
func (r Result) Same() bool { return r.Code == CodeSame }

// Differs reports whether diff found a difference (or a failure was turned
// into a synthetic difference).
func (r Result) Differs() bool { return r.Code == CodeDiffer }

// Failed reports whether diff itself reported trouble, e.g. a missing file.
func (r Result) Failed() bool { return r.Code != CodeSame && r.Code != CodeDiffer }

// Differ compares two files line by line. file1 is the baseline side.
type Differ interface {
	Diff(ctx context.Context, file1, file2 string) Result
}

// #endregion types

// #region exec-differ

// waitDelay bounds how long a killed invocation may keep its output pipes open.
const waitDelay = time.Second

// ExecDiffer runs a diff binary as a subprocess.
type ExecDiffer struct {
	Bin     string
	Timeout time.Duration
}

// NewExecDiffer returns a differ for bin ("diff" when empty). A zero timeout
// means no per-invocation limit.
func NewExecDiffer(bin string, timeout time.Duration) *ExecDiffer {
	if strings.TrimSpace(bin) == "" {
		bin = "diff"
	}
	return &ExecDiffer{Bin: bin, Timeout: timeout}
}

// Diff runs "<bin> file1 file2". If the binary cannot be started or runs past
// the timeout, the failure is reported as a difference whose output describes
// the error, so callers handle it like any other divergence. Cancellation of
// ctx itself yields CodeCancelled.
func (d *ExecDiffer) Diff(ctx context.Context, file1, file2 string) Result {
	parent := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.Bin, file1, file2)
	cmd.WaitDelay = waitDelay
	var out bytes.Buffer
	var errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err == nil {
		return Result{Stderr: errb.Bytes(), Stdout: out.Bytes(), Code: CodeSame}
	}

	if perr := parent.Err(); perr != nil {
		msg := []byte(fmt.Sprintf("%s %s %s: %v\n", d.Bin, file1, file2, perr))
		return Result{Stderr: msg, Code: CodeCancelled}
	}

	var exitErr *exec.ExitError
	if ctx.Err() == nil && errors.As(err, &exitErr) {
		return Result{Stderr: errb.Bytes(), Stdout: out.Bytes(), Code: exitErr.ExitCode()}
	}
	if ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return failure(fmt.Sprintf("%s %s %s", d.Bin, file1, file2), err)
}

func failure(command string, err error) Result {
	payload := []byte(fmt.Sprintf("\nError running: %s\n%v\n", command, err))
	return Result{Stderr: payload, Stdout: payload, Code: CodeDiffer}
}

// #endregion exec-differ
