package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage the tradebook configuration file.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file
  show     - Print the effective configuration

Examples:
  tradebook config init
  tradebook config validate --file my-config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "", "output config file path (default: --config path)")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := configInitOutput
	if out == "" {
		out = cfgPath
	}
	cfg := config.Default()
	if err := cfg.SaveToFile(out); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", out)
	fmt.Println("\nEdit the file, then log in with:")
	fmt.Println("  tradebook login")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  API: %s\n", cfg.API.BaseURL)
	fmt.Printf("  Tokens: %s\n", cfg.API.TokensFile)
	fmt.Printf("  Cache: %s\n", cfg.Cache.DBPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	fmt.Printf("API base URL:  %s\n", cfg.API.BaseURL)
	fmt.Printf("API timeout:   %s\n", cfg.API.Timeout)
	fmt.Printf("Tokens file:   %s\n", cfg.API.TokensFile)
	fmt.Printf("Cache DB:      %s\n", cfg.Cache.DBPath)
	return nil
}
