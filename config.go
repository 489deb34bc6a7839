package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind    string
	port    int
	prefix  string
	profile bool
	tlsCert string
	tlsKey  string
	verbose bool
	version bool

	reapInterval      time.Duration
	redRoomTTL        time.Duration
	ritualTTL         time.Duration
	ritualStartDelay  time.Duration
	ritualLinger      time.Duration
	bloodMoonDuration time.Duration
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.reapInterval <= 0 {
		return fmt.Errorf("invalid reap interval: %s", c.reapInterval)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("COVEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "coven",
		Short:         "Real-time coordination server for ephemeral multiplayer rooms, rituals, and arenas.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: COVEN_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 3001, "port to listen on (env: COVEN_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: COVEN_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: COVEN_PROFILE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: COVEN_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: COVEN_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: COVEN_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: COVEN_VERSION)")

	fs.DurationVar(&cfg.reapInterval, "reap-interval", 5*time.Minute, "how often expired rooms are swept (env: COVEN_REAP_INTERVAL)")
	fs.DurationVar(&cfg.redRoomTTL, "redroom-ttl", time.Hour, "lifetime of a red room from creation (env: COVEN_REDROOM_TTL)")
	fs.DurationVar(&cfg.ritualTTL, "ritual-ttl", 30*time.Minute, "lifetime of a ritual room from creation (env: COVEN_RITUAL_TTL)")
	fs.DurationVar(&cfg.ritualStartDelay, "ritual-start-delay", 3*time.Second, "pause between a ritual filling up and starting (env: COVEN_RITUAL_START_DELAY)")
	fs.DurationVar(&cfg.ritualLinger, "ritual-linger", 10*time.Second, "how long a completed ritual room lingers before deletion (env: COVEN_RITUAL_LINGER)")
	fs.DurationVar(&cfg.bloodMoonDuration, "blood-moon-duration", 66*time.Second, "how long a blood moon stays active (env: COVEN_BLOOD_MOON_DURATION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("coven v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
