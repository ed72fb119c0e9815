package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	addr       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	// .env is dev convenience only; missing file is fine.
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "quizcore",
		Short: "Quiz attempt lifecycle and auto-grading service",
	}

	// Unset means defer to the config file / environment.
	cmd.PersistentFlags().StringVar(&addr, "addr", "", "address to listen on (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(newServeCmd(&configPath, &addr))
	cmd.AddCommand(newMigrateCmd(&configPath))
	return cmd
}
