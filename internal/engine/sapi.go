package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/nadzzz/talkback/internal/platform"
	"github.com/nadzzz/talkback/internal/shell"
)

const (
	// sapiMaxChars hard-caps the text handed to the synthesizer: SAPI has
	// no graceful handling for very long input.
	sapiMaxChars = 1000

	sapiTimeout = 120 * time.Second
)

// SAPI speaks through the Windows built-in System.Speech synthesizer via
// PowerShell. Low latency, no network, works from both native Windows and
// WSL interop.
type SAPI struct {
	rate  int // SAPI rate, -10..10
	facts platform.Facts
	sh    *shell.Runner
}

// NewSAPI creates a SAPI engine with the given speaking rate.
func NewSAPI(rate int, facts platform.Facts) *SAPI {
	return &SAPI{rate: rate, facts: facts, sh: shell.New(facts)}
}

// Name returns the engine identifier.
func (s *SAPI) Name() string { return NameSAPI }

// Available reports whether a Windows host with PowerShell is reachable.
func (s *SAPI) Available(ctx context.Context) bool {
	return s.facts.HostBridge() && s.sh.Available()
}

// Speak synthesizes and plays the text on the host.
func (s *SAPI) Speak(ctx context.Context, text string) error {
	escaped := shell.Escape(text)
	if r := []rune(escaped); len(r) > sapiMaxChars {
		escaped = string(r[:sapiMaxChars]) + "..."
	}

	script := fmt.Sprintf(`Add-Type -AssemblyName System.Speech; `+
		`$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer; `+
		`$synth.Rate = %d; `+
		`$synth.Speak("%s")`, s.rate, escaped)

	if err := s.sh.Run(ctx, script, sapiTimeout); err != nil {
		return fmt.Errorf("sapi: %w", err)
	}
	return nil
}
