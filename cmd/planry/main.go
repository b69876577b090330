package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foxzi/planry/internal/api"
	"github.com/foxzi/planry/internal/app"
	"github.com/foxzi/planry/internal/config"
)

var (
	cfgFile   string
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "planry",
	Short: "Planry - campaign asset planner",
	Long: `Planry plans multi-week email campaigns across the Champions of Wellness
and Well-Being Index brands and derives the ad and content checklist.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planning API server",
	Long:  `Start the Planry HTTP API. Without -c the configuration is read from PLANRY_* environment variables.`,
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("planry version %s\n", version)
		if commit != "unknown" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if buildTime != "unknown" {
			fmt.Printf("  built:  %s\n", buildTime)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(serveCmd, configCmd, versionCmd)
}

// loadConfig reads the -c file, or the environment when no file is given
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.LoadEnv()
	}
	return config.Load(cfgFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	api.Version = version

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return application.Run(context.Background())
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use -c flag)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	auth := "disabled"
	switch {
	case cfg.API.APIKeyHash != "":
		auth = "api key (bcrypt hash)"
	case cfg.API.APIKey != "":
		auth = "api key"
	}

	fmt.Printf("Configuration is valid\n")
	fmt.Printf("  API: %s (auth: %s)\n", cfg.API.ListenAddr, auth)
	fmt.Printf("  Default duration: %d weeks\n", cfg.Planner.DefaultDuration)
	sessions := "unlimited"
	if n := cfg.Planner.SessionLimit(); n > 0 {
		sessions = fmt.Sprintf("max %d", n)
	}
	ttl := "none"
	if d := cfg.Planner.SessionExpiry(); d > 0 {
		ttl = d.String()
	}
	fmt.Printf("  Sessions: %s, ttl %s\n", sessions, ttl)
	fmt.Printf("  Archive: %s\n", cfg.Storage.Path)
	if cfg.Metrics.Enabled {
		fmt.Printf("  Metrics: %s%s\n", cfg.Metrics.ListenAddr, cfg.Metrics.Path)
	}

	return nil
}
