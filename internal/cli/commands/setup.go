package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quicksight-tools/qssync/internal/cli/config"
	"github.com/quicksight-tools/qssync/internal/qsapi"
)

// CommandContext holds common dependencies for CLI commands: the loaded
// configuration, the logger, and the scoped QuickSight session for the active
// profile.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Session *qsapi.Session
	API     qsapi.Caller
}

// NewCommandContext resolves AWS credentials for the configured profile and
// builds the QuickSight caller. One session is acquired per command
// invocation.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	session, err := qsapi.NewSession(cmd.Context(), cfg.Profile, cfg.Region, qsapi.StaticCredentials{
		AccessKeyID:     cfg.Credentials.AccessKeyID,
		SecretAccessKey: cfg.Credentials.SecretAccessKey,
		SessionToken:    cfg.Credentials.SessionToken,
	})
	if err != nil {
		return nil, err
	}

	var opts []qsapi.RESTOption
	if cfg.Endpoint != "" {
		opts = append(opts, qsapi.WithEndpoint(cfg.Endpoint))
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		Session: session,
		API:     qsapi.NewRESTCaller(session.Config, opts...),
	}, nil
}

// getConfig returns the current configuration, falling back to environment
// variables so commands stay usable in tests that bypass the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Profile:      getEnvOrDefault("QSSYNC_PROFILE", config.DefaultProfile),
		Region:       os.Getenv("QSSYNC_REGION"),
		OutputDir:    getEnvOrDefault("QSSYNC_OUTPUT_DIR", config.DefaultOutputDir),
		ImportSuffix: getEnvOrDefault("QSSYNC_IMPORT_SUFFIX", config.DefaultImportSuffix),
		Verbose:      os.Getenv("QSSYNC_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
