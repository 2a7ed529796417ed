// Command crash-relay drains a spool directory of crash reports and uploads
// them to the ingestion service. Applications write reports with the spool
// handler; this agent ships them on their behalf, so a process that crashed
// hard still gets its last report delivered.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/strongdm/crash-relay/internal/relay"
)

const longHelp = `
Ship spooled crash reports to your ingestion service.

Pair crash-relay with the spool handler: the application writes each crash
report to a local directory, and this agent uploads pending reports in the
background, retrying transient failures and quarantining reports the service
rejects. Configure via file ($HOME/.crash-relay/config.toml), CRASH_RELAY_*
environment variables, or flags; flags win over env, env wins over file.
`

var exampleUsage = strings.TrimSpace(`
  crash-relay --spool-dir /var/spool/crash-relay --auth-key <api-key>
  crash-relay --config $HOME/.crash-relay/config.toml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := relay.DefaultConfig()
	var cfgPath string

	log := relay.Logger()

	root := &cobra.Command{
		Use:     "crash-relay",
		Short:   "Ship spooled crash reports to your ingestion service",
		Long:    strings.TrimSpace(longHelp),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Determine config path
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = relay.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && relay.FileExists(cfgFile) {
				fc, err := relay.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := relay.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides file config but is overridden by flags
			if err := relay.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking the auth key)
			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("received signal, stopping...")
				cancel()
			}()

			r := relay.New(cfg, log)
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default $HOME/.crash-relay/config.toml)")
	flags.StringVar(&cfg.SpoolDir, "spool-dir", cfg.SpoolDir, "directory holding spooled crash reports")
	flags.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base URL of the ingestion service")
	flags.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API authentication key")
	flags.StringVar(&cfg.AppName, "app-name", cfg.AppName, "application name sent with uploads")
	flags.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "spool rescan interval")
	flags.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "timeout for a single upload")
	flags.BoolVar(&cfg.Once, "once", cfg.Once, "drain the spool once and exit")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("crash-relay failed")
		os.Exit(1)
	}
}
