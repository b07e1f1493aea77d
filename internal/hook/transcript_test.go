package hook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLastAssistantTextBlockFormat(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"user","message":{"content":[{"type":"text","text":"do the thing"}]}}`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"Working on it."}]}}`,
		`{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Bash"}]}}`,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"All done."},{"type":"text","text":"Tests pass."}]}}`,
	)

	text, err := LastAssistantText(path)
	require.NoError(t, err)
	assert.Equal(t, "All done.\nTests pass.", text)
}

func TestLastAssistantTextRoleFormat(t *testing.T) {
	path := writeTranscript(t,
		`{"role":"user","content":"hello"}`,
		`{"role":"assistant","content":"plain string reply"}`,
		`{"role":"assistant","content":[{"type":"text","text":"block reply"}]}`,
	)

	text, err := LastAssistantText(path)
	require.NoError(t, err)
	assert.Equal(t, "block reply", text)
}

func TestLastAssistantTextSkipsMalformedLines(t *testing.T) {
	path := writeTranscript(t,
		`not json at all`,
		``,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"still found"}]}}`,
		`{"truncated":`,
	)

	text, err := LastAssistantText(path)
	require.NoError(t, err)
	assert.Equal(t, "still found", text)
}

func TestLastAssistantTextNoAssistant(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"user","message":{"content":[{"type":"text","text":"hi"}]}}`,
	)

	text, err := LastAssistantText(path)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestLastAssistantTextMissingFile(t *testing.T) {
	_, err := LastAssistantText(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func TestLastAssistantTextToolUseOnlyKeepsPrevious(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"assistant","message":{"content":[{"type":"text","text":"first answer"}]}}`,
		`{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Read","input":{}}]}}`,
	)

	text, err := LastAssistantText(path)
	require.NoError(t, err)
	assert.Equal(t, "first answer", text)
}
