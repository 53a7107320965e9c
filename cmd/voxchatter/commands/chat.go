package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/messaging"
)

func (a *app) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat on CQ: stdin lines are sent, received messages are printed",
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

			s := chatSession{
				messenger: node.Messenger(),
				observer:  obs,
				self:      cfg.Station(),
				sign:      cfg.SigningKey != "",
				port:      cfg.KISSPort,
				in:        cmd.InOrStdin(),
				out:       cmd.OutOrStdout(),
				errOut:    cmd.ErrOrStderr(),
			}
			return s.run(ctx)
		},
	}
}

type chatSession struct {
	messenger *messaging.Messenger
	observer  *messaging.ChannelObserver
	self      ax25.Station
	sign      bool
	port      string
	in        io.Reader
	out       io.Writer
	errOut    io.Writer
}

// run sends stdin lines to CQ and prints messages for CQ or this station
// until stdin ends, ctx is done or the transport closes.
func (s *chatSession) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// The scanner cannot be interrupted, so it feeds a channel instead of
	// running in the group.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-gctx.Done():
				return
			}
		}
	}()

	inputDone := make(chan struct{})
	g.Go(func() error {
		defer close(inputDone)
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				text := strings.TrimSpace(line)
				if text == "" {
					continue
				}
				if _, err := s.messenger.SendTo(gctx, ax25.Broadcast, text, s.sign); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "%s: %s\n", s.self, text)
			}
		}
	})

	filter := messaging.Filter{
		To:               s.self,
		IncludeBroadcast: true,
		AllowUnsigned:    true,
		AllowUntrusted:   true,
		AllowInvalid:     true,
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-inputDone:
				return nil
			case ev := <-s.observer.Events():
				if filter.Accept(ev) {
					fmt.Fprintln(s.out, chatLine(ev))
				}
			case err := <-s.observer.Errors():
				fmt.Fprintf(s.errOut, "The connection to KISS TNC %s experienced the following error:\n%v\n", s.port, err)
			case <-s.observer.Closed():
				return connectionClosed(s.port, s.errOut)
			}
		}
	})

	return g.Wait()
}
