package main

import (
	"github.com/spf13/cobra"

	"github.com/nadzzz/talkback/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "talkback",
	Short: "Spoken notifications for Claude Code sessions",
	Long: `Talkback reads Claude Code hook events and speaks them through the best
available text-to-speech engine: Edge neural voices, a local Kokoro server,
the Windows built-in synthesizer or espeak.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load(cfgFile)
		config.SetupLogging(cfg.LogFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.claude/talkback.json)")
	rootCmd.AddCommand(speakCmd, hookCmd, doctorCmd)
}
