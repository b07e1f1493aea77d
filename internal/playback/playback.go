// Package playback plays finished audio artifacts through the host audio
// stack.
//
// On Windows and WSL the artifact is handed to a PowerShell
// System.Windows.Media.MediaPlayer, which means a WSL-side path must first
// be translated to its Windows form. Playback is strictly best-effort: the
// artifact is deleted afterward whether or not it played.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nadzzz/talkback/internal/platform"
	"github.com/nadzzz/talkback/internal/shell"
)

const (
	// pollInterval and pollLimit bound the playback wait: the PowerShell
	// script checks the player position every 100ms and gives up after
	// 6000 checks (10 minutes), so a stalled player cannot hang the hook.
	pollIntervalMs = 100
	pollLimit      = 6000

	// playTimeout bounds the whole PowerShell invocation: the poll ceiling
	// plus slack for process startup and media open.
	playTimeout = 11 * time.Minute

	translateTimeout = 5 * time.Second
)

// wslSharedDir is where WSL-side artifacts are written so the Windows host
// can read them without crossing the 9p filesystem boundary.
const wslSharedDir = "/mnt/c/temp"

// Bridge plays audio artifacts on the host.
type Bridge struct {
	facts platform.Facts
	sh    *shell.Runner
}

// New creates a playback bridge for the detected environment.
func New(facts platform.Facts) *Bridge {
	return &Bridge{facts: facts, sh: shell.New(facts)}
}

// TempArtifactPath returns a per-process artifact path with the given
// extension ("mp3", "wav"). Names are keyed by pid so concurrently running
// hook processes never collide. On WSL the file lands in a directory the
// Windows host can open directly.
func TempArtifactPath(facts platform.Facts, ext string) string {
	name := fmt.Sprintf("talkback_%d.%s", os.Getpid(), ext)
	if facts.IsWSL {
		if err := os.MkdirAll(wslSharedDir, 0o755); err == nil {
			return filepath.Join(wslSharedDir, name)
		}
	}
	return filepath.Join(os.TempDir(), name)
}

// Play plays the artifact at path through the host media player and then
// removes it. Returns whether the host reported success.
func (b *Bridge) Play(ctx context.Context, path string) bool {
	defer Remove(path)

	if !b.facts.HostBridge() {
		slog.Debug("no host audio bridge available", "os", b.facts.OS)
		return false
	}

	hostPath := b.hostPath(ctx, path)
	script := playerScript(hostPath)
	if err := b.sh.Run(ctx, script, playTimeout); err != nil {
		slog.Warn("audio playback failed", "path", hostPath, "error", err)
		return false
	}
	return true
}

// hostPath translates a WSL path into its Windows form via wslpath.
// Translation failure falls back to the untranslated path.
func (b *Bridge) hostPath(ctx context.Context, path string) string {
	if !b.facts.IsWSL {
		return path
	}

	tctx, cancel := context.WithTimeout(ctx, translateTimeout)
	defer cancel()

	out, err := exec.CommandContext(tctx, "wslpath", "-w", path).Output()
	if err != nil {
		slog.Debug("wslpath translation failed, using original path", "path", path, "error", err)
		return path
	}
	return strings.TrimSpace(string(out))
}

// playerScript builds the PowerShell command that opens the artifact in a
// MediaPlayer, waits for duration metadata, then polls the position until
// the clip ends or the bounded poll limit is reached.
func playerScript(winPath string) string {
	// Backslashes survive a double-quoted PowerShell string, but quotes and
	// backticks must not.
	escaped := shell.Escape(winPath)
	return fmt.Sprintf(`Add-Type -AssemblyName presentationCore; `+
		`$player = New-Object System.Windows.Media.MediaPlayer; `+
		`$player.Open("%s"); `+
		`$wait = 0; `+
		`while (-not $player.NaturalDuration.HasTimeSpan -and $wait -lt 50) { Start-Sleep -Milliseconds %d; $wait++ }; `+
		`$player.Play(); `+
		`$elapsed = 0; `+
		`while ($player.Position -lt $player.NaturalDuration.TimeSpan -and $elapsed -lt %d) { Start-Sleep -Milliseconds %d; $elapsed++ }; `+
		`$player.Close()`,
		escaped, pollIntervalMs, pollLimit, pollIntervalMs)
}

// Remove deletes an artifact, ignoring every failure. A missing file is the
// normal case after an engine error cleaned up early.
func Remove(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
