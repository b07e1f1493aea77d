package engine

import (
	"context"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nadzzz/talkback/internal/platform"
	"github.com/nadzzz/talkback/internal/playback"
)

// Edge read-aloud websocket endpoint. The trusted client token is the
// well-known one the Edge browser itself sends.
const (
	edgeTrustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	edgeEndpoint           = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	edgeOrigin             = "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"
	edgeUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0"
	edgeOutputFormat       = "audio-24khz-48kbitrate-mono-mp3"

	edgeHandshakeTimeout = 10 * time.Second
	edgeReadDeadline     = 5 * time.Minute
)

// Edge synthesizes speech through Microsoft's cloud neural voices. When the
// mpv streaming player is present the MP3 chunks are piped straight into it
// so playback starts before synthesis finishes and text length is unbounded;
// otherwise the chunks are buffered into a temp artifact and played through
// the host bridge.
type Edge struct {
	voice        string
	rate         string // e.g. "+10%"
	volume       string // e.g. "+0%"
	useStreaming bool
	facts        platform.Facts
	bridge       *playback.Bridge

	player     string
	playerArgs []string
	mpvCheck   func(context.Context) bool
	synth      func(ctx context.Context, text string, sink func([]byte) error) error
}

// NewEdge creates an edge engine with the given voice parameters.
func NewEdge(voice, rate, volume string, useStreaming bool, facts platform.Facts, bridge *playback.Bridge) *Edge {
	if voice == "" {
		voice = "en-US-AriaNeural"
	}
	if rate == "" {
		rate = "+0%"
	}
	if volume == "" {
		volume = "+0%"
	}
	e := &Edge{
		voice:        voice,
		rate:         rate,
		volume:       volume,
		useStreaming: useStreaming,
		facts:        facts,
		bridge:       bridge,
		player:       "mpv",
		playerArgs:   []string{"--really-quiet", "--no-video", "-"},
		mpvCheck:     MPVAvailable,
	}
	e.synth = e.synthesize
	return e
}

// Name returns the engine identifier.
func (e *Edge) Name() string { return NameEdge }

// Available always reports true: the client is compiled in, and network
// reachability only shows at synthesis time.
func (e *Edge) Available(ctx context.Context) bool { return true }

// Speak synthesizes and plays the text, streaming when possible. The
// buffered path is only a fallback for streaming failures where no audio
// reached the player yet; once a chunk has been played, replaying the full
// text from the start would audibly repeat speech, so the error is returned
// instead.
func (e *Edge) Speak(ctx context.Context, text string) error {
	if e.useStreaming && e.mpvCheck(ctx) {
		played, err := e.streamToPlayer(ctx, text)
		if err == nil {
			return nil
		}
		if played {
			return fmt.Errorf("edge streaming playback: %w", err)
		}
		slog.Debug("edge streaming setup failed, trying buffered playback", "error", err)
	}
	return e.bufferAndPlay(ctx, text)
}

// streamToPlayer pipes audio chunks into the player's stdin as they arrive.
// The returned flag reports whether any chunk was handed to the player.
func (e *Edge) streamToPlayer(ctx context.Context, text string) (bool, error) {
	cmd := exec.CommandContext(ctx, e.player, e.playerArgs...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return false, fmt.Errorf("mpv stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return false, fmt.Errorf("starting mpv: %w", err)
	}

	played := false
	synthErr := e.synth(ctx, text, func(chunk []byte) error {
		if _, werr := stdin.Write(chunk); werr != nil {
			return werr
		}
		played = true
		return nil
	})
	stdin.Close()
	waitErr := cmd.Wait()

	if synthErr != nil {
		return played, synthErr
	}
	if waitErr != nil {
		return played, fmt.Errorf("mpv playback: %w", waitErr)
	}
	return played, nil
}

// bufferAndPlay writes the full audio to a temp artifact, then plays it
// through the host bridge.
func (e *Edge) bufferAndPlay(ctx context.Context, text string) error {
	path := playback.TempArtifactPath(e.facts, "mp3")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating audio artifact: %w", err)
	}

	synthErr := e.synth(ctx, text, func(chunk []byte) error {
		_, werr := f.Write(chunk)
		return werr
	})
	f.Close()
	if synthErr != nil {
		playback.Remove(path)
		return synthErr
	}

	if !e.bridge.Play(ctx, path) {
		return fmt.Errorf("edge playback failed")
	}
	return nil
}

// synthesize runs one read-aloud session and feeds every audio chunk to
// sink in arrival order.
func (e *Edge) synthesize(ctx context.Context, text string, sink func([]byte) error) error {
	connID := strings.ReplaceAll(uuid.NewString(), "-", "")
	url := edgeEndpoint + "?TrustedClientToken=" + edgeTrustedClientToken + "&ConnectionId=" + connID

	header := http.Header{}
	header.Set("Origin", edgeOrigin)
	header.Set("User-Agent", edgeUserAgent)

	dialer := websocket.Dialer{HandshakeTimeout: edgeHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return fmt.Errorf("connecting to edge: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(edgeReadDeadline)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)

	ts := edgeTimestamp()

	speechConfig := `{"context":{"synthesis":{"audio":{"metadataoptions":` +
		`{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},` +
		`"outputFormat":"` + edgeOutputFormat + `"}}}}`
	configMsg := "X-Timestamp:" + ts + "\r\n" +
		"Content-Type:application/json; charset=utf-8\r\n" +
		"Path:speech.config\r\n\r\n" + speechConfig
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configMsg)); err != nil {
		return fmt.Errorf("sending speech.config: %w", err)
	}

	reqID := strings.ReplaceAll(uuid.NewString(), "-", "")
	ssmlMsg := "X-RequestId:" + reqID + "\r\n" +
		"Content-Type:application/ssml+xml\r\n" +
		"X-Timestamp:" + ts + "\r\n" +
		"Path:ssml\r\n\r\n" + e.ssml(text)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ssmlMsg)); err != nil {
		return fmt.Errorf("sending ssml: %w", err)
	}

	// Response stream: binary frames carry audio until a text frame
	// reports turn.end.
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading edge event: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				return nil
			}
		case websocket.BinaryMessage:
			chunk, ok := audioPayload(data)
			if !ok || len(chunk) == 0 {
				continue
			}
			if err := sink(chunk); err != nil {
				return fmt.Errorf("writing audio chunk: %w", err)
			}
		}
	}
}

// ssml renders the synthesis request document.
func (e *Edge) ssml(text string) string {
	return fmt.Sprintf(`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>`+
		`<voice name='%s'><prosody pitch='+0Hz' rate='%s' volume='%s'>%s</prosody></voice></speak>`,
		e.voice, e.rate, e.volume, xmlEscape(text))
}

// audioPayload splits a binary edge frame: a 2-byte big-endian header
// length, the headers, then the payload. Only frames whose headers carry
// Path:audio hold playable data.
func audioPayload(frame []byte) ([]byte, bool) {
	if len(frame) < 2 {
		return nil, false
	}
	headerLen := int(binary.BigEndian.Uint16(frame[:2]))
	if len(frame) < 2+headerLen {
		return nil, false
	}
	if !strings.Contains(string(frame[2:2+headerLen]), "Path:audio") {
		return nil, false
	}
	return frame[2+headerLen:], true
}

// edgeTimestamp formats the wall clock the way the read-aloud service
// expects in X-Timestamp headers.
func edgeTimestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05") + " GMT+0000 (Coordinated Universal Time)"
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
