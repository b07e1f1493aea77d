// Package hook parses Claude Code hook payloads and turns them into
// speakable text.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
)

// Input is the JSON payload a hook receives on stdin. Fields are populated
// per event type; absent fields stay zero.
type Input struct {
	SessionID      string         `json:"session_id"`
	TranscriptPath string         `json:"transcript_path"`
	HookEventName  string         `json:"hook_event_name"`
	StopHookActive bool           `json:"stop_hook_active"`
	ToolName       string         `json:"tool_name"`
	ToolInput      map[string]any `json:"tool_input"`
	ToolResponse   any            `json:"tool_response"`
}

// ReadInput decodes a hook payload from r.
func ReadInput(r io.Reader) (*Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decoding hook input: %w", err)
	}
	return &in, nil
}
