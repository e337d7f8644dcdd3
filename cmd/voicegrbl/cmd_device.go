package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <line>",
		Short: "Send one raw protocol line after the handshake and print the reply",
		Example: `  voicegrbl send '?'
  voicegrbl send 'G1 X0.2500 F60.00'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Log, cmd.ErrOrStderr())

			session, err := dialDevice(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			reply, err := session.Send(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReply(cmd, reply)
			return nil
		},
	}
}

func newHoldCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hold",
		Short: "Issue a feed hold and print the controller status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Log, cmd.ErrOrStderr())

			session, err := dialDevice(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			reply, err := session.FeedHold(cmd.Context())
			if err != nil {
				return err
			}
			printReply(cmd, reply)
			return nil
		},
	}
}

func printReply(cmd *cobra.Command, reply string) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "(no reply)"
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
}
