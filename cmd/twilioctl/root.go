package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wondertwin-ai/twilio/internal/config"
	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

// app is the state shared by every command once flags are resolved.
type app struct {
	out    io.Writer
	errOut io.Writer
	v      *viper.Viper
	logger *slog.Logger

	configFile string
	profile    string
	format     string
	verbose    bool

	client *twilio.Client
}

// clientConfig resolves credentials: flags, then TWILIO_* environment, then
// the selected profile of the config file.
func (a *app) clientConfig() (twilio.Config, error) {
	var file *config.Config
	var err error
	if a.configFile != "" {
		file, err = config.LoadFrom(a.configFile)
	} else {
		file, err = config.Load()
	}
	if err != nil {
		return twilio.Config{}, fmt.Errorf("load config: %w", err)
	}
	if p, err := file.Profile(a.profile); err == nil {
		a.v.SetDefault("account_sid", p.AccountSID)
		a.v.SetDefault("auth_token", p.AuthToken)
		a.v.SetDefault("base_url", p.BaseURL)
	} else if a.profile != "" {
		return twilio.Config{}, err
	}

	return twilio.Config{
		AccountSID: a.v.GetString("account_sid"),
		AuthToken:  a.v.GetString("auth_token"),
		BaseURL:    a.v.GetString("base_url"),
		Timeout:    a.v.GetDuration("timeout"),
	}, nil
}

// connect builds the API client for commands that talk to the API.
func (a *app) connect(cmd *cobra.Command, _ []string) error {
	cfg, err := a.clientConfig()
	if err != nil {
		return err
	}
	client, err := twilio.NewClient(cfg, twilio.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("%w (set --account-sid/--auth-token, TWILIO_ACCOUNT_SID/TWILIO_AUTH_TOKEN, or run twilioctl configure)", err)
	}
	a.client = client
	return nil
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, v: viper.New()}

	root := &cobra.Command{
		Use:           "twilioctl",
		Short:         "twilioctl manages Twilio resources from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
			if a.format != "yaml" && a.format != "json" {
				return fmt.Errorf("unknown output format %q (want yaml or json)", a.format)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ~/.twilio/config.yaml)")
	pf.StringVar(&a.profile, "profile", "", "credentials profile (default: active profile)")
	pf.StringVarP(&a.format, "output", "o", "yaml", "output format: yaml or json")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")
	pf.String("account-sid", "", "account SID (env TWILIO_ACCOUNT_SID)")
	pf.String("auth-token", "", "auth token (env TWILIO_AUTH_TOKEN)")
	pf.String("base-url", "", "API base URL (env TWILIO_BASE_URL)")
	pf.Duration("timeout", twilio.DefaultTimeout, "request timeout (env TWILIO_TIMEOUT)")

	a.v.SetEnvPrefix("TWILIO")
	a.v.AutomaticEnv()
	a.v.BindPFlag("account_sid", pf.Lookup("account-sid"))
	a.v.BindPFlag("auth_token", pf.Lookup("auth-token"))
	a.v.BindPFlag("base_url", pf.Lookup("base-url"))
	a.v.BindPFlag("timeout", pf.Lookup("timeout"))

	root.AddCommand(
		newVersionCmd(a),
		newKindsCmd(a),
		newFindCmd(a),
		newListCmd(a),
		newCountCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDestroyCmd(a),
		newCallCmd(a),
		newTokenCmd(a),
		newConfigureCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "twilioctl %s (API %s)\n", version, twilio.DefaultAPIVersion)
		},
	}
}
