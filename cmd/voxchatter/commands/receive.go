package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/messaging"
)

type receiveOptions struct {
	to             string
	allRecipients  bool
	allowAll       bool
	allowUnsigned  bool
	allowUntrusted bool
	allowInvalid   bool
	raw            bool
	verbose        bool
}

func (o receiveOptions) filter(self ax25.Station) (messaging.Filter, error) {
	to := self
	if o.to != "" {
		st, err := ax25.ParseStation(normalizeCallsign(o.to))
		if err != nil {
			return messaging.Filter{}, fmt.Errorf("--to: %w", err)
		}
		to = st
	}
	return messaging.Filter{
		To:             to,
		AllRecipients:  o.allRecipients,
		AllowAll:       o.allowAll,
		AllowUnsigned:  o.allowUnsigned,
		AllowUntrusted: o.allowUntrusted,
		AllowInvalid:   o.allowInvalid,
	}, nil
}

func (a *app) receiveCmd() *cobra.Command {
	var o receiveOptions

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Print received messages to stdout, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			obs := messaging.NewChannelObserver(16)

			node, cfg, err := a.openNode(ctx, cmd.ErrOrStderr(), obs)
			if err != nil {
				return err
			}
			defer node.Close()
			defer obs.Stop()

			filter, err := o.filter(cfg.Station())
			if err != nil {
				return err
			}
			return receiveLoop(ctx, obs, filter, o, cfg.KISSPort, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.to, "to", "", "only show messages to this station (default: your station)")
	flags.BoolVar(&o.allRecipients, "all-recipients", false, "show messages to any station")
	flags.BoolVar(&o.allowAll, "allow-all", false, "show every message regardless of recipient or signature")
	flags.BoolVar(&o.allowUnsigned, "allow-unsigned", false, "show unsigned messages")
	flags.BoolVar(&o.allowUntrusted, "allow-untrusted", false, "show messages signed by unknown keys")
	flags.BoolVar(&o.allowInvalid, "allow-invalid", false, "show messages with invalid signatures")
	flags.BoolVar(&o.raw, "raw", false, "print the raw frame instead of the message")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "describe every received packet on stderr")
	return cmd
}

// receiveLoop prints accepted messages until ctx is done or the transport
// fails.
func receiveLoop(ctx context.Context, obs *messaging.ChannelObserver, filter messaging.Filter, o receiveOptions, port string, out, errOut io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-obs.Events():
			if o.verbose {
				fmt.Fprintln(errOut, verboseLine(ev, o.raw))
			}
			if filter.Accept(ev) {
				fmt.Fprintln(out, packetLine(ev, o.raw))
			}
		case err := <-obs.Errors():
			fmt.Fprintf(errOut, "The connection to KISS TNC %s experienced the following error:\n%v\n", port, err)
			return err
		case <-obs.Closed():
			return connectionClosed(port, errOut)
		}
	}
}

func connectionClosed(port string, errOut io.Writer) error {
	err := fmt.Errorf("the connection to KISS TNC at %s is now closed", port)
	fmt.Fprintf(errOut, "The connection to KISS TNC at %s is now closed. Exiting.\n", port)
	return err
}
