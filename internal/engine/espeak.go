package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

const espeakTimeout = 60 * time.Second

// Espeak drives the espeak-ng/espeak command-line formant synthesizer.
// It is the final fallback on systems with no host audio bridge.
type Espeak struct {
	rate int // words per minute
}

// NewEspeak creates an espeak engine with the given speaking rate.
func NewEspeak(rate int) *Espeak {
	if rate <= 0 {
		rate = 175
	}
	return &Espeak{rate: rate}
}

// Name returns the engine identifier.
func (e *Espeak) Name() string { return NameEspeak }

// Available reports whether an espeak binary is on PATH. espeak-ng is
// preferred over the unmaintained original.
func (e *Espeak) Available(ctx context.Context) bool {
	return espeakBinary() != ""
}

// Speak synthesizes and plays the text through the local audio stack.
func (e *Espeak) Speak(ctx context.Context, text string) error {
	bin := espeakBinary()
	if bin == "" {
		return fmt.Errorf("espeak not installed")
	}

	ctx, cancel := context.WithTimeout(ctx, espeakTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "-s", strconv.Itoa(e.rate), text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("espeak failed: %w (%s)", err, out)
	}
	return nil
}

func espeakBinary() string {
	for _, bin := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(bin); err == nil {
			return path
		}
	}
	return ""
}
