package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Alain-L/slowq/config"
	"github.com/Alain-L/slowq/store"
)

const (
	defaultConfigPath = "slowq.yaml"
	dsnEnv            = "SLOWQ_DSN"
	defaultLanguage   = "en"
)

// exitCodeError ends the process with code and no error message.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// session is the state one command runs with. db is nil until openStore.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	loc    *time.Location
	db     *store.DB
}

// newLogger builds the command logger: warnings and up in production
// format, everything in development format with --verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// loadConfig reads the configuration file and applies the environment and
// flag overrides, flags last.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if v := os.Getenv(dsnEnv); v != "" {
		cfg.DSN = v
	}
	if dsnFlag != "" {
		cfg.DSN = dsnFlag
	}
	if driverFlag != "" {
		cfg.Driver = driverFlag
	}
	if f := cmd.Flag("prefix"); f != nil && f.Changed {
		p := prefixFlag
		cfg.Prefix = &p
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	return cfg, nil
}

// newSession loads configuration and logger for cmd.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(verbose)
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	logger.Debug("configuration loaded",
		zap.String("config", configPath),
		zap.String("driver", store.DriverName(cfg.Driver)),
		zap.String("family", string(cfg.ResolveFamily())),
		zap.String("prefix", cfg.TablePrefix()),
		zap.String("timezone", loc.String()))
	return &session{cfg: cfg, logger: logger, loc: loc}, nil
}

// openStore connects to the host database.
func (s *session) openStore(ctx context.Context) (*store.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	db, err := store.Open(ctx, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

// Close releases the database connection and flushes the logger.
func (s *session) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	// Sync on a console stderr fails with ENOTTY/EINVAL; nothing is buffered there.
	_ = s.logger.Sync()
	return err
}

// withStore runs fn with an open session and store, closing both after.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *session, db *store.DB) error) (err error) {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, s, db)
}
