// Package shell runs PowerShell commands on the Windows host.
//
// From WSL the Windows interop layer exposes powershell.exe on PATH, so the
// same invocation shape works both natively and from inside the Linux
// layer. Every run carries an explicit timeout; a stuck PowerShell must
// never pin a hook process.
package shell

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/nadzzz/talkback/internal/platform"
)

// Runner invokes PowerShell for a fixed environment.
type Runner struct {
	exe string
}

// New picks the PowerShell binary for the environment: powershell.exe when
// called through WSL interop, plain powershell on native Windows.
func New(facts platform.Facts) *Runner {
	exe := "powershell"
	if facts.IsWSL {
		exe = "powershell.exe"
	}
	return &Runner{exe: exe}
}

// Available reports whether the PowerShell binary can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.exe)
	return err == nil
}

// Run executes a PowerShell command with -NoProfile under the given timeout.
// Output is only collected for diagnostics; a non-zero exit is an error.
func (r *Runner) Run(ctx context.Context, command string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.exe, "-NoProfile", "-Command", command)
	out, err := cmd.CombinedOutput()
	if err != nil {
		slog.Debug("powershell command failed", "error", err, "output", strings.TrimSpace(string(out)))
		return fmt.Errorf("powershell: %w", err)
	}
	return nil
}

// Escape neutralizes double quotes and backticks so text can be embedded in
// a double-quoted PowerShell string without being interpreted.
func Escape(s string) string {
	return strings.NewReplacer(`"`, "'", "`", "'").Replace(s)
}
