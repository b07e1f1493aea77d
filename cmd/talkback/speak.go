package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/talkback/internal/dispatch"
)

var speakCmd = &cobra.Command{
	Use:   "speak [text...]",
	Short: "Speak the given text (or stdin when no arguments)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = string(data)
		}

		if !dispatch.New(cfg).Speak(cmd.Context(), text) {
			return fmt.Errorf("nothing was spoken")
		}
		return nil
	},
}
