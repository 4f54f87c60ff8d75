package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chase3718/buzzer/internal/note"
	"github.com/chase3718/buzzer/internal/render"
)

var (
	renderWAV  string
	renderMIDI string
	renderBeat int
)

var renderCmd = &cobra.Command{
	Use:   "render <notes>",
	Short: "Write a melody to a WAV and/or MIDI file",
	Example: `  buzzer render --wav tune.wav 44000:4,49400:4,55000:2
  buzzer render --mid tune.mid --beat 90 44000:4,0:4,44000:4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderWAV, "wav", "", "write a WAV file")
	renderCmd.Flags().StringVar(&renderMIDI, "mid", "", "write a standard MIDI file")
	renderCmd.Flags().IntVar(&renderBeat, "beat", 0, "tempo in quarter notes per minute (default from config)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderWAV == "" && renderMIDI == "" {
		return fmt.Errorf("nothing to do: give --wav and/or --mid")
	}
	cfg := getConfig()
	beat := renderBeat
	if beat == 0 {
		beat = cfg.Beat
	}

	song, err := note.Parse(strings.Join(args, ","), cfg.Capacity)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	summary := styles.Dim.Render(fmt.Sprintf("(%d notes, %s at %d bpm)", song.Len(), song.Duration(beat), beat))

	if renderWAV != "" {
		f, err := os.Create(renderWAV)
		if err != nil {
			return err
		}
		err = render.WAV(f, song, beat, render.WAVOptions{})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, styles.OK.Render("wrote"), renderWAV, summary)
	}
	if renderMIDI != "" {
		if err := render.MIDI(renderMIDI, song, beat); err != nil {
			return err
		}
		fmt.Fprintln(out, styles.OK.Render("wrote"), renderMIDI, summary)
	}
	return nil
}
