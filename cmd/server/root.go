package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vinodismyname/xlquery/config"
	"github.com/vinodismyname/xlquery/internal/query"
	"github.com/vinodismyname/xlquery/internal/registry"
	"github.com/vinodismyname/xlquery/internal/runtime"
	"github.com/vinodismyname/xlquery/internal/security"
	"github.com/vinodismyname/xlquery/internal/telemetry"
	"github.com/vinodismyname/xlquery/internal/workbooks"
	"github.com/vinodismyname/xlquery/pkg/version"
)

var (
	envFile     string
	logLevel    string
	allowedDirs []string
	uploadDir   string
)

var rootCmd = &cobra.Command{
	Use:           "xlquery",
	Short:         "Query Excel workbooks as tools for agents",
	Version:       version.Version(),
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file; existing environment variables win")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env: "+config.EnvLogLevel+")")
	rootCmd.PersistentFlags().StringSliceVar(&allowedDirs, "allowed-dirs", nil, "Directories workbooks may be opened from (env: "+config.EnvAllowedDirs+")")
	rootCmd.PersistentFlags().StringVar(&uploadDir, "upload-dir", "", "Directory uploads are written to (env: "+config.EnvUploadDir+")")
}

// app is the wired query stack shared by every subcommand.
type app struct {
	settings config.Settings
	logger   zerolog.Logger
	ctrl     *runtime.Controller
	hooks    *telemetry.Hooks
	tools    *registry.Registry
}

// newApp resolves settings (flags over env over defaults), configures
// logging and builds the engine and tool registry.
func newApp(cmd *cobra.Command) (*app, error) {
	s := config.Load(envFile)
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	if cmd.Flags().Changed("allowed-dirs") {
		s.AllowedDirs = allowedDirs
	}
	if uploadDir != "" {
		s.UploadDir = uploadDir
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	logger := zlog.Output(os.Stderr).With().Str("service", "xlquery").Logger()

	var validator workbooks.PathValidator
	if len(s.AllowedDirs) > 0 {
		// Uploaded workbooks must stay readable by the tools.
		if err := os.MkdirAll(s.UploadDir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
		secMgr, err := security.NewManager(append(append([]string{}, s.AllowedDirs...), s.UploadDir))
		if err != nil {
			return nil, err
		}
		if err := secMgr.ValidateConfig(); err != nil {
			return nil, err
		}
		logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")
		validator = secMgr
	} else {
		logger.Warn().Msg("no allowed directories configured; any readable path may be opened")
	}

	ctrl := runtime.NewController(runtime.LimitsFromSettings(s))

	hooks := telemetry.NewHooks(logger)
	engine := query.NewEngine(workbooks.NewManager(ctrl, validator))

	return &app{
		settings: s,
		logger:   logger,
		ctrl:     ctrl,
		hooks:    hooks,
		tools:    registry.New(engine, hooks),
	}, nil
}
