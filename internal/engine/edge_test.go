package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/talkback/internal/platform"
	"github.com/nadzzz/talkback/internal/playback"
)

func edgeFrame(headers string, payload []byte) []byte {
	frame := make([]byte, 2, 2+len(headers)+len(payload))
	binary.BigEndian.PutUint16(frame, uint16(len(headers)))
	frame = append(frame, headers...)
	return append(frame, payload...)
}

func TestAudioPayload(t *testing.T) {
	payload := []byte{0xff, 0xfb, 0x90, 0x00}
	chunk, ok := audioPayload(edgeFrame("X-RequestId:abc\r\nPath:audio\r\n", payload))
	require.True(t, ok)
	assert.Equal(t, payload, chunk)
}

func TestAudioPayloadNonAudioFrame(t *testing.T) {
	_, ok := audioPayload(edgeFrame("Path:audio.metadata\r\n", []byte("{}")))
	assert.True(t, ok, "metadata path still contains the audio marker")

	_, ok = audioPayload(edgeFrame("Path:response\r\n", []byte("{}")))
	assert.False(t, ok)
}

func TestAudioPayloadTruncatedFrame(t *testing.T) {
	_, ok := audioPayload([]byte{0x01})
	assert.False(t, ok)

	// Header length claims more bytes than the frame holds.
	short := []byte{0xff, 0xff, 'P', 'a', 't', 'h'}
	_, ok = audioPayload(short)
	assert.False(t, ok)
}

func TestAudioPayloadEmptyPayload(t *testing.T) {
	chunk, ok := audioPayload(edgeFrame("Path:audio\r\n", nil))
	require.True(t, ok)
	assert.Empty(t, chunk)
}

func TestEdgeSSML(t *testing.T) {
	e := NewEdge("en-US-AriaNeural", "+10%", "+0%", false, platform.Facts{}, nil)
	doc := e.ssml(`tests passed & "all" <green>`)

	assert.Contains(t, doc, "name='en-US-AriaNeural'")
	assert.Contains(t, doc, "rate='+10%'")
	assert.Contains(t, doc, "&amp;")
	assert.Contains(t, doc, "&lt;green&gt;")
	assert.NotContains(t, doc, "<green>")
}

func TestEdgeDefaults(t *testing.T) {
	e := NewEdge("", "", "", true, platform.Facts{}, nil)
	assert.Equal(t, "en-US-AriaNeural", e.voice)
	assert.Equal(t, "+0%", e.rate)
	assert.Equal(t, "+0%", e.volume)
	assert.Equal(t, NameEdge, e.Name())
	assert.True(t, e.Available(context.Background()))
}

func TestEdgeSpeakNoBufferedRetryAfterAudioPlayed(t *testing.T) {
	e := NewEdge("", "", "", true, platform.Facts{}, nil)
	e.mpvCheck = func(context.Context) bool { return true }
	e.player = "cat"
	e.playerArgs = []string{"-"}

	calls := 0
	e.synth = func(ctx context.Context, text string, sink func([]byte) error) error {
		calls++
		require.NoError(t, sink([]byte("chunk")))
		return errors.New("connection reset")
	}

	err := e.Speak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 1, calls, "audio already played, text must not be re-synthesized")
}

func TestEdgeSpeakBufferedRetryWhenNoAudioPlayed(t *testing.T) {
	e := NewEdge("", "", "", true, platform.Facts{}, playback.New(platform.Facts{}))
	e.mpvCheck = func(context.Context) bool { return true }
	e.player = "cat"
	e.playerArgs = []string{"-"}

	calls := 0
	e.synth = func(ctx context.Context, text string, sink func([]byte) error) error {
		calls++
		if calls == 1 {
			// Streaming attempt dies before any chunk reaches the player.
			return errors.New("dial tcp: connection refused")
		}
		return sink([]byte("chunk"))
	}

	err := e.Speak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "playback failed")
	assert.Equal(t, 2, calls, "nothing played yet, so the buffered path retries")
}

func TestEdgeSpeakFallsBackWhenPlayerStartFails(t *testing.T) {
	e := NewEdge("", "", "", true, platform.Facts{}, playback.New(platform.Facts{}))
	e.mpvCheck = func(context.Context) bool { return true }
	e.player = filepath.Join(t.TempDir(), "no-such-player")

	calls := 0
	e.synth = func(ctx context.Context, text string, sink func([]byte) error) error {
		calls++
		return sink([]byte("chunk"))
	}

	err := e.Speak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "playback failed")
	assert.Equal(t, 1, calls, "only the buffered path synthesizes when the player cannot start")
}

func TestEdgeTimestampFormat(t *testing.T) {
	ts := edgeTimestamp()
	assert.True(t, strings.HasSuffix(ts, "GMT+0000 (Coordinated Universal Time)"), ts)
}
