package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voice-grbl/internal/domain"
	"voice-grbl/internal/intent"
	"voice-grbl/internal/motion"
)

func newParseCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <transcript>...",
		Short: "Show how a transcript is interpreted, without a device",
		Example: `  voicegrbl parse "backward 1.5 turns"
  voicegrbl parse forward two spins`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			return parse(cmd, strings.Join(args, " "), cfg.DeviceConfig())
		},
	}
}

func parse(cmd *cobra.Command, text string, dev domain.DeviceConfig) error {
	out := cmd.OutOrStdout()
	command := intent.Interpret(text)

	fmt.Fprintf(out, "kind:      %s\n", command.Kind)
	if !command.IsMove() {
		return nil
	}

	plan, err := motion.Translate(command, dev)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "direction: %s\n", command.Direction)
	fmt.Fprintf(out, "turns:     %.4f\n", command.Magnitude)
	fmt.Fprintf(out, "gcode:     %s\n", plan.ProtocolLine)
	fmt.Fprintf(out, "steps:     %d (%d per turn)\n", plan.TotalSteps, dev.StepsPerRevolution())
	return nil
}
