package main

import (
	"fmt"
	"log"
	"os"

	"github.com/NeuralTrust/banhammer/pkg/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	configFile string
)

func main() {
	loadEnv()

	rootCmd := &cobra.Command{
		Use:          "banhammer",
		Short:        "BanHammer - sliding window rate limiting with escalating actions",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config", "directory holding config.yaml")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "explicit config file, overrides --config")

	rootCmd.AddCommand(
		serveCmd(),
		benchCmd(),
		inspectCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadEnv() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load(configPath)
}
