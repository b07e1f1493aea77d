package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nadzzz/talkback/internal/platform"
	"github.com/nadzzz/talkback/internal/playback"
)

const (
	// Kokoro serves 24kHz 16-bit mono PCM.
	kokoroSampleRate = 24000

	kokoroProbeTimeout = 3 * time.Second
	kokoroHTTPTimeout  = 60 * time.Second

	// kokoroSegmentChars bounds the text sent per synthesis request; long
	// responses are synthesized in sentence-aligned segments and the PCM is
	// concatenated into one buffer.
	kokoroSegmentChars = 300
)

// Kokoro uses a local Kokoro TTS server (OpenAI-compatible /v1/audio/speech
// API). The full text is synthesized to an in-memory PCM buffer, wrapped in
// a WAV container and played through the host bridge; no streaming variant.
type Kokoro struct {
	apiBase string
	voice   string
	model   string
	client  *http.Client
	facts   platform.Facts
	bridge  *playback.Bridge
}

type kokoroRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input"`
	Voice  string `json:"voice"`
	Format string `json:"response_format,omitempty"`
}

// NewKokoro creates a Kokoro engine. apiBase defaults to
// "http://localhost:8102" and voice to "af_nova".
func NewKokoro(apiBase, voice string, facts platform.Facts, bridge *playback.Bridge) *Kokoro {
	if apiBase == "" {
		apiBase = "http://localhost:8102"
	}
	if voice == "" {
		voice = "af_nova"
	}
	return &Kokoro{
		apiBase: strings.TrimSuffix(apiBase, "/"),
		voice:   voice,
		model:   "kokoro",
		client:  &http.Client{Timeout: kokoroHTTPTimeout},
		facts:   facts,
		bridge:  bridge,
	}
}

// Name returns the engine identifier.
func (k *Kokoro) Name() string { return NameKokoro }

// Available reports whether the Kokoro server answers its models endpoint.
func (k *Kokoro) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, kokoroProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.apiBase+"/v1/models", nil)
	if err != nil {
		return false
	}
	resp, err := k.client.Do(req)
	if err != nil {
		slog.Debug("kokoro probe failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Speak synthesizes the text segment by segment, writes the combined WAV
// artifact and plays it through the host bridge.
func (k *Kokoro) Speak(ctx context.Context, text string) error {
	var pcm bytes.Buffer
	for _, seg := range splitSegments(text, kokoroSegmentChars) {
		chunk, err := k.synthesizeSegment(ctx, seg)
		if err != nil {
			return err
		}
		pcm.Write(chunk)
	}
	if pcm.Len() == 0 {
		return fmt.Errorf("kokoro produced no audio")
	}

	path := playback.TempArtifactPath(k.facts, "wav")
	wav := pcmToWAV(pcm.Bytes(), kokoroSampleRate, 1, 2)
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return fmt.Errorf("writing audio artifact: %w", err)
	}

	if !k.bridge.Play(ctx, path) {
		return fmt.Errorf("kokoro playback failed")
	}
	return nil
}

// synthesizeSegment requests raw PCM for one text segment.
func (k *Kokoro) synthesizeSegment(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(kokoroRequest{
		Model:  k.model,
		Input:  text,
		Voice:  k.voice,
		Format: "pcm",
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.apiBase+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("kokoro error (status %d): %s", resp.StatusCode, msg)
	}
	return io.ReadAll(resp.Body)
}

// splitSegments cuts text into segments of at most max runes, preferring
// sentence boundaries in the back half of each window.
func splitSegments(text string, max int) []string {
	var segs []string
	r := []rune(strings.TrimSpace(text))
	for len(r) > max {
		cut := max
		for i := max - 1; i >= max/2; i-- {
			if r[i] == '.' || r[i] == '!' || r[i] == '?' {
				cut = i + 1
				break
			}
		}
		seg := strings.TrimSpace(string(r[:cut]))
		if seg != "" {
			segs = append(segs, seg)
		}
		r = []rune(strings.TrimSpace(string(r[cut:])))
	}
	if len(r) > 0 {
		segs = append(segs, string(r))
	}
	return segs
}
