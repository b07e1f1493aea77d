// Talkback speaks Claude Code session events aloud. It runs as a Stop and
// PostToolUse hook, reading the event payload from stdin, and doubles as a
// command-line speaker for scripts.
//
// Usage:
//
//	talkback speak "build finished"
//	talkback hook stop < payload.json
//	talkback hook post-tool-use < payload.json
//	talkback doctor
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
