// cmd/root.go
//
// Root command.
//   - Loads .env (godotenv) and cancels on SIGINT/SIGTERM.
//   - --log-level / --pretty configure the global zerolog logger.
//   - Every flag of every command can also come from FUNQUIZ_<FLAG>.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.1.0"

// Execute loads .env, builds the command tree and runs it until SIGINT/SIGTERM.
func Execute() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("funquiz")
		return err
	}
	return nil
}

type rootConfig struct {
	logLevel string
	pretty   bool
}

func newRootCmd() *cobra.Command {
	v := newViper()
	cfg := &rootConfig{}

	cmd := &cobra.Command{
		Use:           "funquiz",
		Short:         "Word-unscramble quiz: HTTP backend and terminal client.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cfg.logLevel, cfg.pretty)
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error (env: FUNQUIZ_LOG_LEVEL)")
	fs.BoolVar(&cfg.pretty, "pretty", false, "human-friendly console logs instead of JSON (env: FUNQUIZ_PRETTY)")
	bindFlags(v, fs)

	cmd.AddCommand(newServeCmd(v), newPlayCmd(v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("funquiz v{{.Version}}\n")
	return cmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FUNQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags lets FUNQUIZ_<FLAG> env vars supply any flag not set on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func setupLogging(level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}
