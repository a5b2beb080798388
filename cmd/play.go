// cmd/play.go
//
// `funquiz play`: the terminal game. Progress is kept in memory for the run;
// completed rounds can be reported to a server with --user/--password or
// --token.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robalobadob/funquiz/internal/bank"
	"github.com/robalobadob/funquiz/internal/client"
	"github.com/robalobadob/funquiz/internal/daily"
	"github.com/robalobadob/funquiz/internal/progress"
	"github.com/robalobadob/funquiz/internal/quiz"
	"github.com/robalobadob/funquiz/internal/tui"
)

const (
	localPlayer = "local"
	// server default when neither --daily-salt nor --jwt-secret is set
	dailySalt = "dev_secret_change_me"
)

type playConfig struct {
	tier          string
	questionsFile string
	server        string
	user          string
	password      string
	token         string
	seed          uint64
	unlockAll     bool
	daily         bool
}

func (c *playConfig) validate() error {
	if _, err := quiz.ParseTier(c.tier); err != nil {
		return fmt.Errorf("invalid --tier %q: %w", c.tier, err)
	}
	if (c.user != "") != (c.password != "") {
		return errors.New("--user and --password must be given together")
	}
	if c.daily && c.seed != 0 {
		return errors.New("--daily and --seed are mutually exclusive")
	}
	if c.token != "" && c.user != "" {
		return errors.New("--token and --user are mutually exclusive")
	}
	if (c.user != "" || c.token != "") && c.server == "" {
		return errors.New("--server is required to sign in")
	}
	return nil
}

func newPlayCmd(v *viper.Viper) *cobra.Command {
	cfg := &playConfig{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runPlay(cmd, cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.tier, "tier", "t", string(quiz.TierEasy), "tier to start on: easy, medium, hard, extreme (env: FUNQUIZ_TIER)")
	fs.StringVar(&cfg.questionsFile, "questions-file", "", "YAML question bank; empty uses the built-in bank (env: FUNQUIZ_QUESTIONS_FILE)")
	fs.StringVar(&cfg.server, "server", "", "funquiz server to report scores to (env: FUNQUIZ_SERVER)")
	fs.StringVarP(&cfg.user, "user", "u", "", "username or email on --server (env: FUNQUIZ_USER)")
	fs.StringVar(&cfg.password, "password", "", "password on --server (env: FUNQUIZ_PASSWORD)")
	fs.StringVar(&cfg.token, "token", "", "auth token for --server instead of --user/--password (env: FUNQUIZ_TOKEN)")
	fs.Uint64Var(&cfg.seed, "seed", 0, "fixed shuffle seed; 0 means random (env: FUNQUIZ_SEED)")
	fs.BoolVar(&cfg.unlockAll, "unlock-all", false, "start with every tier unlocked (env: FUNQUIZ_UNLOCK_ALL)")
	fs.BoolVar(&cfg.daily, "daily", false, "play today's shared question order (env: FUNQUIZ_DAILY)")
	bindFlags(v, fs)

	return cmd
}

func runPlay(cmd *cobra.Command, cfg *playConfig) error {
	ctx := cmd.Context()

	b, err := bank.LoadFile(cfg.questionsFile)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}

	store := progress.NewMemory()
	if cfg.unlockAll {
		for _, t := range quiz.Tiers {
			if err := store.MarkCompleted(ctx, localPlayer, t, 0); err != nil {
				return err
			}
		}
	}

	rec, err := scoreRecorder(ctx, cfg)
	if err != nil {
		return err
	}

	factory := func(t quiz.Tier) (*quiz.Session, error) {
		opts := []quiz.Option{
			quiz.WithOwner(localPlayer),
			quiz.WithProgress(progress.ForPlayer(store, localPlayer)),
		}
		if rec != nil {
			opts = append(opts, quiz.WithRecorder(rec))
		}
		switch {
		case cfg.daily:
			opts = append(opts, quiz.WithRand(daily.Rand(time.Now(), dailySalt, t)))
		case cfg.seed != 0:
			opts = append(opts, quiz.WithRand(quiz.NewSeeded(cfg.seed)))
		}
		return quiz.NewSession(t, b[t], opts...)
	}

	tier, _ := quiz.ParseTier(cfg.tier)
	sess, err := factory(tier)
	if err != nil {
		return err
	}
	if err := sess.Start(ctx); err != nil {
		if errors.Is(err, quiz.ErrTierLocked) {
			return fmt.Errorf("%s is locked; finish the previous tier first or pass --unlock-all", tier)
		}
		return err
	}
	return tui.Run(ctx, sess, factory)
}

// scoreRecorder returns the server client completed rounds are reported to,
// or nil when playing offline.
func scoreRecorder(ctx context.Context, cfg *playConfig) (quiz.ScoreRecorder, error) {
	switch {
	case cfg.token != "":
		return client.New(cfg.server, client.WithToken(cfg.token)), nil
	case cfg.user != "":
		c := client.New(cfg.server)
		u, err := c.Login(ctx, cfg.user, cfg.password)
		if err != nil {
			return nil, fmt.Errorf("sign in to %s: %w", cfg.server, err)
		}
		log.Debug().Str("user", u.Username).Str("server", cfg.server).Msg("signed in")
		return c, nil
	}
	return nil, nil
}
