// Command asrctl is the operator CLI for the job service: it can run the
// server in-process (serve) or talk to a running server over HTTP
// (providers, jobs), grounded on rishikanthc-Scriberr/internal/cli's
// cobra+viper layering.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "asrctl",
	Short: "Operator CLI for the ASR job service",
}

func main() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "base URL of a running server")
	viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initConfig layers a ~/.asrctl.yaml config file over the --server flag and
// environment variables, mirroring internal/cli/config.go's InitConfig.
func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.AddConfigPath(home)
	viper.SetConfigType("yaml")
	viper.SetConfigName(".asrctl")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// resolvedServerURL prefers server_url from ~/.asrctl.yaml (or the
// SERVER_URL environment variable) over the --server flag's value; nothing
// is ever written back to the config file.
func resolvedServerURL() string {
	if v := viper.GetString("server_url"); v != "" {
		return v
	}
	return serverURL
}
