package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		incoming  string
		outgoing  string
		appParams []string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a Twilio Client capability token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.clientConfig()
			if err != nil {
				return err
			}
			tok := twilio.NewCapabilityToken(cfg)
			if incoming != "" {
				tok.AllowClientIncoming(incoming)
			}
			if outgoing != "" {
				params, err := parseAssignments(appParams)
				if err != nil {
					return err
				}
				tok.AllowClientOutgoing(outgoing, params)
			}
			signed, err := tok.Generate(ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&incoming, "incoming", "", "client name allowed to receive calls")
	cmd.Flags().StringVar(&outgoing, "outgoing", "", "application SID allowed for outgoing calls")
	cmd.Flags().StringSliceVar(&appParams, "param", nil, "application parameter key=value (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", twilio.DefaultCapabilityTTL, "token lifetime")
	return cmd
}
