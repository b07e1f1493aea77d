package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nadzzz/talkback/internal/engine"
	"github.com/nadzzz/talkback/internal/platform"
	"github.com/nadzzz/talkback/internal/playback"
	"github.com/nadzzz/talkback/internal/shell"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report platform detection and engine availability",
	Run: func(cmd *cobra.Command, args []string) {
		facts := platform.Detect()
		bridge := playback.New(facts)

		fmt.Printf("platform:    %s\n", facts.OS)
		fmt.Printf("wsl:         %v\n", facts.IsWSL)
		fmt.Printf("host bridge: %v\n", facts.HostBridge())
		fmt.Printf("powershell:  %v\n", shell.New(facts).Available())
		fmt.Printf("mpv:         %v\n", engine.MPVAvailable(cmd.Context()))
		fmt.Println()

		engines := []engine.Engine{
			engine.NewEdge(cfg.Voice, cfg.Rate, cfg.Volume, cfg.UseStreamingPlayer, facts, bridge),
			engine.NewKokoro(cfg.Kokoro.URL, cfg.Kokoro.Voice, facts, bridge),
			engine.NewSAPI(cfg.SAPIRate, facts),
			engine.NewEspeak(cfg.EspeakRate),
		}
		fmt.Printf("configured engine: %s\n", cfg.Engine)
		for _, e := range engines {
			status := "unavailable"
			if e.Available(cmd.Context()) {
				status = "available"
			}
			fmt.Printf("  %-8s %s\n", e.Name(), status)
		}
	},
}
