package hook

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// summaryMaxChars caps the spoken length of a tool result summary.
const summaryMaxChars = 200

// commandFamilies maps a command binary to a friendlier spoken name.
var commandFamilies = map[string]string{
	"npm":    "NPM command",
	"git":    "Git command",
	"python": "Python script",
	"node":   "Node script",
	"pip":    "Pip command",
	"mkdir":  "Created directory",
	"cd":     "Changed directory",
	"ls":     "Listed files",
	"cat":    "Read file",
	"rm":     "Removed file",
	"mv":     "Moved file",
	"cp":     "Copied file",
	"pytest": "Tests",
	"jest":   "Tests",
	"go":     "Go command",
}

// Announcement builds the spoken one-liner for a completed tool call, or ""
// when the tool is filtered out by the announce list.
func Announcement(toolName string, toolInput map[string]any, toolResponse any, announce []string) string {
	if len(announce) > 0 && !slices.Contains(announce, toolName) {
		return ""
	}

	switch toolName {
	case "Read":
		return "Read file " + fileName(toolInput)
	case "Write":
		return "Wrote file " + fileName(toolInput)
	case "Edit":
		return "Edited file " + fileName(toolInput)
	case "Bash":
		return bashAnnouncement(toolInput, toolResponse)
	case "Glob":
		return fmt.Sprintf("Found %d files", countResults(toolResponse))
	case "Grep":
		return fmt.Sprintf("Searched for pattern, found %d matches", countResults(toolResponse))
	case "WebSearch":
		return "Completed web search"
	case "WebFetch":
		return "Fetched web content"
	case "Task":
		return "Subagent task completed"
	case "TodoWrite":
		return "Updated task list"
	default:
		return toolName + " completed"
	}
}

// bashAnnouncement names the command family and flags errors visible in the
// response.
func bashAnnouncement(toolInput map[string]any, toolResponse any) string {
	command, _ := toolInput["command"].(string)
	first := "command"
	if fields := strings.Fields(command); len(fields) > 0 {
		first = filepath.Base(fields[0])
	}

	friendly, ok := commandFamilies[first]
	if !ok {
		friendly = first + " command"
	}

	if resp, ok := toolResponse.(string); ok {
		lower := strings.ToLower(resp)
		if strings.Contains(lower, "error") || strings.Contains(lower, "failed") {
			return friendly + " completed with errors"
		}
	}
	return friendly + " completed"
}

// SummarizeToolResult condenses a tool response into a short speakable
// string, or "" when there is nothing to say. Bash output prefers the test
// summary line when one exists, otherwise the tail of the output.
func SummarizeToolResult(toolName string, toolResponse any) string {
	text := responseText(toolResponse)
	if text == "" {
		return ""
	}

	if toolName != "Bash" {
		return capChars(text, summaryMaxChars)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) <= 3 {
		return capChars(text, summaryMaxChars)
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "passed") || strings.Contains(lower, "failed") {
		tail := lines
		if len(tail) > 5 {
			tail = tail[len(tail)-5:]
		}
		for _, line := range tail {
			l := strings.ToLower(line)
			if strings.Contains(l, "passed") || strings.Contains(l, "failed") {
				return capChars(line, summaryMaxChars)
			}
		}
	}

	return capChars(strings.Join(lines[len(lines)-3:], " "), summaryMaxChars)
}

// responseText flattens a tool response into a string. Responses arrive as
// strings, block lists or objects depending on the tool.
func responseText(resp any) string {
	switch v := resp.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func fileName(toolInput map[string]any) string {
	path, _ := toolInput["file_path"].(string)
	if path == "" {
		return "a file"
	}
	return filepath.Base(path)
}

// countResults counts entries in a list response or lines in a string one.
func countResults(resp any) int {
	switch v := resp.(type) {
	case nil:
		return 0
	case []any:
		return len(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		return len(strings.Split(s, "\n"))
	default:
		return 0
	}
}

func capChars(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}
