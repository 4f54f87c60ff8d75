// Command buzzer plays melodies on a piezo buzzer.
//
// Usage:
//
//	buzzer [--config file] [--debug] <command> [args]
//
// Commands:
//
//	serve    - run the player daemon (actuator, button triggers, control socket)
//	send     - send a control command, e.g. buzzer send music 44000:4,0:4
//	beat     - print the daemon's tempo
//	press    - press the play/pause button
//	status   - print the playback state
//	render   - write a melody to a WAV or MIDI file
//	version  - show version information
package main

import (
	"fmt"
	"os"

	"github.com/chase3718/buzzer/internal/player"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error:"), err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps err to the errno a device write would have failed with.
func exitCode(err error) int {
	switch player.Errno(err) {
	case "EINVAL":
		return 22
	case "EBUSY":
		return 16
	case "ENOSPC":
		return 28
	}
	return 1
}
