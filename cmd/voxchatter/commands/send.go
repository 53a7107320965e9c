package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opd-ai/voxchatter/ax25"
)

func (a *app) sendCmd() *cobra.Command {
	var (
		to       string
		message  string
		dontSign bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message, or one message per line of stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dst, err := ax25.ParseStation(normalizeCallsign(to))
			if err != nil {
				return fmt.Errorf(`--to must be a valid callsign or callsign-ssid pair (e.g. "CALL-1"): %w`, err)
			}

			ctx := cmd.Context()
			node, cfg, err := a.openNode(ctx, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer node.Close()

			// Sign only when a signing key is configured.
			sign := cfg.SigningKey != "" && !dontSign
			m := node.Messenger()

			if message != "" {
				_, err := m.SendTo(ctx, dst, message, sign)
				return err
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimRight(scanner.Text(), "\r")
				if line == "" {
					continue
				}
				if _, err := m.SendTo(ctx, dst, line, sign); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&to, "to", "CQ", "recipient callsign, callsign-ssid or chatroom")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message to send (default: read lines from stdin)")
	cmd.Flags().BoolVar(&dontSign, "dont-sign", false, "send unsigned even when a signing key is configured")
	return cmd
}
