package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chase3718/buzzer/internal/control"
)

var sendCmd = &cobra.Command{
	Use:   "send <command...>",
	Short: "Send a control command (music f:d,... | beat n)",
	Example: `  buzzer send music 44000:4,0:4,55000:2
  buzzer send beat 90`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := request(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.OK.Render(reply))
		return nil
	},
}

var beatCmd = &cobra.Command{
	Use:   "beat",
	Short: "Print the daemon's tempo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reply, err := request("read")
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("no reply")
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

var pressCmd = &cobra.Command{
	Use:   "press",
	Short: "Press the play/pause button",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reply, err := request("press")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.OK.Render(reply))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the playback state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reply, err := request("status")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, field := range strings.Fields(reply) {
			k, v, _ := strings.Cut(field, "=")
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render(fmt.Sprintf("%-7s", k)), v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd, beatCmd, pressCmd, statusCmd)
}

// request sends one line to the daemon on a fresh connection.
func request(line string) (string, error) {
	cfg := getConfig()
	cl, err := control.Dial(cfg.Control.Network, cfg.Control.Address)
	if err != nil {
		return "", err
	}
	defer cl.Close()
	logger.Debug("control: request", "line", line)
	return cl.Do(line)
}
