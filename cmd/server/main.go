// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/internal/analyzer"
	"github.com/sozercan/aop-analyst/internal/config"
	"github.com/sozercan/aop-analyst/internal/framework"
	"github.com/sozercan/aop-analyst/internal/llm"
	"github.com/sozercan/aop-analyst/internal/logger"
	"github.com/sozercan/aop-analyst/internal/server"
	"github.com/sozercan/aop-analyst/internal/store"
)

var (
	cfg    *config.Config
	appLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aop-analyst",
	Short: "Analyze Annual Operating Plan submissions with a hosted model",
	Long: `aop-analyst turns AOP form submissions into a grounded analysis prompt,
sends it to a hosted model and scores how much of the submitted data the
reply actually references.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog, err = logger.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(frameworkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	provider, err := llm.NewOpenAI(&cfg.LLM, appLog)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			appLog.Error("LLM_API_KEY must be set to serve analyses")
		}
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	frameworks, closeFrameworks, err := openFrameworkStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFrameworks()

	submissions, err := store.New(cfg.Database.Path, appLog)
	if err != nil {
		return fmt.Errorf("failed to open submissions database: %w", err)
	}
	defer submissions.Close()

	srv := server.New(cfg.Server, server.Deps{
		Analyzer:    analyzer.New(provider, frameworks, appLog),
		Editor:      framework.NewEditor(provider, appLog),
		Frameworks:  frameworks,
		Submissions: submissions,
		Logger:      appLog,
	})

	appLog.Info("starting server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("model", cfg.LLM.Model),
		zap.String("frameworkBackend", cfg.Framework.Backend),
	)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// openFrameworkStore builds the configured framework backend. The returned
// func releases it.
func openFrameworkStore(ctx context.Context) (framework.Store, func(), error) {
	defaults, err := framework.Defaults(cfg.Framework.Seed)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Framework.Backend {
	case "", "file":
		return framework.NewFileStore(cfg.Framework.Path, defaults, appLog), func() {}, nil

	case "redis":
		rs := framework.NewRedisStore(framework.NewRedisClient(cfg.Redis), cfg.Redis.Key, defaults, appLog)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown FRAMEWORK_BACKEND %q, want file or redis", cfg.Framework.Backend)
	}
}
