package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nadzzz/talkback/internal/dispatch"
	"github.com/nadzzz/talkback/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Run as a Claude Code hook, reading the event payload from stdin",
}

// Hook commands always exit 0. A hook that fails its own job must never
// fail the session that invoked it.
var hookStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Speak the assistant's final response (Stop event)",
	Run: func(cmd *cobra.Command, args []string) {
		if !cfg.Enabled || !cfg.SpeakResponses {
			return
		}

		in, err := hook.ReadInput(os.Stdin)
		if err != nil {
			slog.Warn("unreadable hook input", "error", err)
			return
		}
		if in.StopHookActive {
			slog.Debug("stop hook already active, skipping")
			return
		}
		if in.TranscriptPath == "" {
			return
		}

		text, err := hook.LastAssistantText(in.TranscriptPath)
		if err != nil {
			slog.Warn("could not read transcript", "path", in.TranscriptPath, "error", err)
			return
		}
		if text == "" {
			slog.Debug("no assistant text in transcript", "path", in.TranscriptPath)
			return
		}

		dispatch.New(cfg).Speak(cmd.Context(), text)
	},
}

var hookPostToolUseCmd = &cobra.Command{
	Use:   "post-tool-use",
	Short: "Announce a completed tool call (PostToolUse event)",
	Run: func(cmd *cobra.Command, args []string) {
		if !cfg.Enabled {
			return
		}
		if !cfg.SpeakThinking && !cfg.SpeakToolResults {
			return
		}

		in, err := hook.ReadInput(os.Stdin)
		if err != nil {
			slog.Warn("unreadable hook input", "error", err)
			return
		}

		d := dispatch.New(cfg)

		if cfg.SpeakThinking {
			if line := hook.Announcement(in.ToolName, in.ToolInput, in.ToolResponse, cfg.ToolsToAnnounce); line != "" {
				d.Announce(cmd.Context(), line)
			}
		}

		if cfg.SpeakToolResults {
			if summary := hook.SummarizeToolResult(in.ToolName, in.ToolResponse); summary != "" {
				d.Speak(cmd.Context(), summary)
			}
		}
	},
}

func init() {
	hookCmd.AddCommand(hookStopCmd, hookPostToolUseCmd)
}
