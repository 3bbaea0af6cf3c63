package main

import (
	"encoding/json"
	"fmt"
	"os"

	"eternal-mint/conf"

	"github.com/spf13/cobra"
)

var (
	envName    string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:          "mintctl <command>",
	Short:        "Operator tools for the EternalMint contract",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "staging", "environment: development/staging/production")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "offline", Title: "Offline:"},
		&cobra.Group{ID: "chain", Title: "Chain:"},
	)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sniffCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(distributeCmd)
}

// loadConfig reads the yaml of the selected environment into conf.Cfg
func loadConfig() (*conf.Config, error) {
	conf.SystemEnvironmentEnum = conf.ParseEnvironment(envName)
	if err := conf.InitConfig(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return conf.Cfg, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
