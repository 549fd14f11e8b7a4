// Package command contains the CLI command constructors.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stolasapp/scribe/internal/config"
	"github.com/stolasapp/scribe/internal/observability"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	configFilePath := config.DefaultPath()
	dotenvPath := ".env"
	cmd := &cobra.Command{
		Use:          "scribe [command] [flags]",
		Short:        "A minimal blogging platform API",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := loadOrInitConfig(configFilePath, dotenvPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := observability.InitSlog(cfg)
			logger.DebugContext(cmd.Context(), "configuration loaded",
				slog.String("address", cfg.Address),
				slog.String("database_url", cfg.DatabaseURL),
				slog.String("log_level", cfg.LogLevel),
				slog.Bool("dev_mode", cfg.DevMode),
			)
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(
		&configFilePath,
		"config", "c",
		configFilePath,
		"path to the configuration file",
	)
	cmd.PersistentFlags().StringVar(
		&dotenvPath,
		"env-file",
		dotenvPath,
		"path to an optional dotenv file",
	)

	cmd.AddCommand(
		serveCommand(),
		userCommand(),
		seedCommand(),
	)

	return cmd
}

func loadOrInitConfig(configFilePath, dotenvPath string) (*config.Config, error) {
	env, err := config.Environment(dotenvPath)
	if err != nil {
		return nil, err
	}

	_, err = os.Stat(configFilePath)
	if err == nil || !errors.Is(err, fs.ErrNotExist) || config.HasSecret(env) {
		return config.Load(configFilePath, env)
	}

	resp, initErr := prompt(fmt.Sprintf("Config not found at %s. Create one with a new secret key? [y|N] ", configFilePath), false)
	if initErr != nil || !bytes.Equal(resp, []byte("y")) {
		return nil, errors.Join(err, initErr)
	}

	cfg := config.Default()
	cfg.SecretKey = config.NewSecretKey()
	if err = config.Save(configFilePath, cfg); err != nil {
		return nil, err
	}
	return config.Load(configFilePath, env)
}
