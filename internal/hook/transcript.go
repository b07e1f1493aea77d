package hook

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// Transcript lines hold whole assistant turns; 1MB headroom covers even
// very long responses.
const maxTranscriptLine = 1024 * 1024

// LastAssistantText scans a session transcript (JSONL) and returns the text
// of the final assistant message. Two shapes occur in the wild: events with
// type "assistant" carrying a message.content block list, and bare chat
// records with role "assistant" whose content is a string or a block list.
// Malformed lines are skipped. Returns "" when no assistant text exists.
func LastAssistantText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	var last string

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxTranscriptLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || !gjson.Valid(line) {
			continue
		}
		event := gjson.Parse(line)

		switch {
		case event.Get("type").String() == "assistant":
			if text := blockText(event.Get("message.content")); text != "" {
				last = text
			}
		case event.Get("role").String() == "assistant":
			content := event.Get("content")
			if content.Type == gjson.String {
				if s := content.String(); s != "" {
					last = s
				}
			} else if text := blockText(content); text != "" {
				last = text
			}
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("scanning transcript: %w", err)
	}
	return last, nil
}

// blockText joins the text blocks of a content array.
func blockText(content gjson.Result) string {
	var parts []string
	content.ForEach(func(_, block gjson.Result) bool {
		if block.Type == gjson.String {
			parts = append(parts, block.String())
		} else if block.Get("type").String() == "text" {
			parts = append(parts, block.Get("text").String())
		}
		return true
	})
	return strings.Join(parts, "\n")
}
