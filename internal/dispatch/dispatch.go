// Package dispatch implements engine selection and the speak pipeline.
//
// The dispatcher sanitizes the text, picks a synthesis engine for the
// current platform and walks a fallback chain until one engine speaks the
// text or the chain is exhausted. Speech failure is never fatal to the
// caller; hooks report success either way.
package dispatch

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/nadzzz/talkback/internal/config"
	"github.com/nadzzz/talkback/internal/engine"
	"github.com/nadzzz/talkback/internal/platform"
	"github.com/nadzzz/talkback/internal/playback"
	"github.com/nadzzz/talkback/internal/sanitize"
)

const (
	// Announcements are short status lines; they get a faster voice than
	// full responses.
	announceSAPIRate   = 3
	announceEspeakRate = 200
)

// Dispatcher routes text to the right synthesis engine.
type Dispatcher struct {
	cfg     *config.Config
	facts   platform.Facts
	engines map[string]engine.Engine

	// announcers hold the fast-rate engines for the short status lines.
	announcers map[string]engine.Engine
}

// New creates a Dispatcher with the full engine set for the detected
// platform.
func New(cfg *config.Config) *Dispatcher {
	facts := platform.Detect()
	bridge := playback.New(facts)

	engines := []engine.Engine{
		engine.NewEdge(cfg.Voice, cfg.Rate, cfg.Volume, cfg.UseStreamingPlayer, facts, bridge),
		engine.NewKokoro(cfg.Kokoro.URL, cfg.Kokoro.Voice, facts, bridge),
		engine.NewSAPI(cfg.SAPIRate, facts),
		engine.NewEspeak(cfg.EspeakRate),
	}
	return newWith(cfg, facts, engines)
}

func newWith(cfg *config.Config, facts platform.Facts, engines []engine.Engine) *Dispatcher {
	em := make(map[string]engine.Engine, len(engines))
	for _, e := range engines {
		em[e.Name()] = e
	}
	return &Dispatcher{
		cfg:     cfg,
		facts:   facts,
		engines: em,
		announcers: map[string]engine.Engine{
			engine.NameSAPI:   engine.NewSAPI(announceSAPIRate, facts),
			engine.NameEspeak: engine.NewEspeak(announceEspeakRate),
		},
	}
}

// Speak sanitizes the text and speaks it through the first engine in the
// fallback chain that succeeds. It returns whether anything was spoken.
func (d *Dispatcher) Speak(ctx context.Context, text string) bool {
	if !d.cfg.Enabled {
		return false
	}

	clean := sanitize.Clean(text)
	if clean == "" {
		return false
	}

	start := time.Now()
	for _, name := range d.chain(ctx) {
		eng, ok := d.engines[name]
		if !ok {
			continue
		}
		if !eng.Available(ctx) {
			slog.Debug("engine unavailable, trying next", "engine", name)
			continue
		}

		spoken := clean
		if name != engine.NameEdge {
			// Edge streams, so it alone handles unbounded text well.
			spoken = sanitize.Truncate(clean, d.cfg.MaxSpeakLength)
		}

		if err := eng.Speak(ctx, spoken); err != nil {
			slog.Warn("engine failed, trying next", "engine", name, "error", err)
			continue
		}
		slog.Info("spoke text", "engine", name, "chars", utf8.RuneCountInString(spoken), "duration", time.Since(start))
		return true
	}

	slog.Error("all engines failed", "chars", utf8.RuneCountInString(clean))
	return false
}

// Announce speaks a short status line through a fast low-latency voice,
// preferring the host synthesizer over espeak. Announcements skip the
// fallback chain; a miss is just silence.
func (d *Dispatcher) Announce(ctx context.Context, text string) bool {
	if !d.cfg.Enabled {
		return false
	}
	clean := sanitize.Clean(text)
	if clean == "" {
		return false
	}

	name := engine.NameEspeak
	if d.facts.HostBridge() {
		name = engine.NameSAPI
	}
	quick, ok := d.announcers[name]
	if !ok || !quick.Available(ctx) {
		return false
	}
	if err := quick.Speak(ctx, clean); err != nil {
		slog.Debug("announcement failed", "engine", quick.Name(), "error", err)
		return false
	}
	return true
}

// chain resolves the ordered list of engines to try. The configured (or
// auto-selected) engine comes first, then edge and sapi when a Windows host
// is reachable, then espeak everywhere but native Windows.
func (d *Dispatcher) chain(ctx context.Context) []string {
	selected := d.cfg.Engine
	if selected == "" || selected == "auto" {
		selected = d.autoSelect(ctx)
	}

	candidates := []string{selected}
	if d.facts.HostBridge() {
		candidates = append(candidates, engine.NameEdge)
		if d.cfg.FallbackToSAPI {
			candidates = append(candidates, engine.NameSAPI)
		}
	}
	if !d.facts.IsWindows {
		candidates = append(candidates, engine.NameEspeak)
	}

	seen := make(map[string]bool, len(candidates))
	chain := candidates[:0]
	for _, name := range candidates {
		if !seen[name] {
			seen[name] = true
			chain = append(chain, name)
		}
	}
	return chain
}

// autoSelect picks the best engine for the platform: kokoro when a local
// server answers on WSL, edge wherever a Windows host is reachable, espeak
// otherwise.
func (d *Dispatcher) autoSelect(ctx context.Context) string {
	if d.facts.IsWSL {
		if k, ok := d.engines[engine.NameKokoro]; ok && k.Available(ctx) {
			return engine.NameKokoro
		}
	}
	if d.facts.HostBridge() {
		return engine.NameEdge
	}
	return engine.NameEspeak
}
