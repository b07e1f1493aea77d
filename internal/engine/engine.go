// Package engine implements the speech synthesis backends.
//
// Four backends cover the fallback spectrum: edge (cloud neural TTS over
// the read-aloud websocket), kokoro (local neural TTS server), sapi (the
// Windows built-in synthesizer, reachable from WSL through PowerShell
// interop) and espeak (formant synthesis, the last resort on Unix).
// Availability is probed at call time, since external tools come and go
// between hook invocations.
package engine

import (
	"context"
	"os/exec"
	"sync"
	"time"
)

// Engine names. The set is closed; the dispatcher selects among these.
const (
	NameEdge   = "edge"
	NameKokoro = "kokoro"
	NameSAPI   = "sapi"
	NameEspeak = "espeak"
)

// Engine converts text into audible speech as a single blocking operation.
type Engine interface {
	// Name returns the engine identifier.
	Name() string

	// Available reports whether the backend can be used right now.
	Available(ctx context.Context) bool

	// Speak synthesizes and plays the text. Any error means the caller
	// should try the next engine in its chain.
	Speak(ctx context.Context, text string) error
}

const mpvProbeTimeout = 5 * time.Second

var (
	mpvOnce      sync.Once
	mpvAvailable bool
)

// MPVAvailable reports whether the mpv streaming player is installed and
// answers its version query. The probe runs once per process; two chain
// stages may consult it during a single request.
func MPVAvailable(ctx context.Context) bool {
	mpvOnce.Do(func() {
		if _, err := exec.LookPath("mpv"); err != nil {
			return
		}
		pctx, cancel := context.WithTimeout(ctx, mpvProbeTimeout)
		defer cancel()
		mpvAvailable = exec.CommandContext(pctx, "mpv", "--version").Run() == nil
	})
	return mpvAvailable
}
