package main

import (
	"github.com/spf13/cobra"

	"moviesalon/backend/pkg/config"
	"moviesalon/backend/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var profilesPath string

	cmd := &cobra.Command{
		Use:   "salon",
		Short: "Run movie recommendation discussions from the terminal",
		Long: `salon runs the same discussion engine as the HTTP server and prints each
contribution as it is produced. Configuration is read from the environment
and an optional .env file.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&profilesPath, "profiles", "", "character profiles file (overrides PROFILES_PATH)")

	cmd.AddCommand(newRunCmd(&profilesPath))
	cmd.AddCommand(newCharactersCmd(&profilesPath))
	return cmd
}

// loadConfig reads configuration and starts logging. Logs go to stderr so stdout stays readable.
func loadConfig(profilesPath string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if profilesPath != "" {
		cfg.ProfilesPath = profilesPath
	}
	if err := logger.Init(cfg.Env); err != nil {
		return nil, err
	}
	return cfg, nil
}
