package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/twilio/internal/config"
)

func newConfigureCmd(a *app) *cobra.Command {
	var activate bool
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save credentials to a profile in the config file",
		Long: `Save the credentials given by --account-sid, --auth-token and --base-url
(or their TWILIO_* environment variables) under --profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile
			if path == "" {
				p, err := config.Path()
				if err != nil {
					return err
				}
				path = p
			}
			file, err := config.LoadFrom(path)
			if err != nil {
				return err
			}

			p := config.Profile{
				AccountSID: a.v.GetString("account_sid"),
				AuthToken:  a.v.GetString("auth_token"),
				BaseURL:    a.v.GetString("base_url"),
			}
			if err := p.ClientConfig().Validate(); err != nil {
				return err
			}

			name := a.profile
			if name == "" {
				name = config.DefaultProfile
			}
			file.SetProfile(name, p)
			if activate {
				file.ActiveProfile = name
			}
			if err := config.SaveTo(path, file); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved profile %q (account %s, token %s) to %s\n",
				name, p.AccountSID, config.MaskToken(p.AuthToken), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&activate, "activate", false, "make this the active profile")
	return cmd
}
