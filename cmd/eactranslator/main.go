// Eactranslator translates between English, French and Swahili with tone
// control, voice input and spoken output.
//
// Usage:
//
//	eactranslator serve [--config /path/to/eactranslator.yaml]
//	eactranslator translate --direction en-sw "Good morning"
//	eactranslator transcribe --direction fr-en recording.wav
//	eactranslator speak --language sw "Habari za asubuhi"
//
// @title       EAC Translator API
// @version     1.0
// @description English, French and Swahili translation with tone control, voice input and speech output.
// @BasePath    /
// @license.name MIT
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/qtrinova/eactranslator/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configFile string
	envFile    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eactranslator",
		Short: "English, French and Swahili translator",
		Long: `eactranslator translates text and recorded speech between English,
French and Swahili using MarianMT models from the Hugging Face hub.
French to Swahili pivots through English.

Run "eactranslator serve" to start the HTTP, WebSocket and gRPC API, or use
the translate, transcribe and speak commands for one-off requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/eactranslator.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(
		newServeCmd(),
		newTranslateCmd(),
		newTranscribeCmd(),
		newSpeakCmd(),
		newDirectionsCmd(),
		newTonesCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the dotenv file, then the configuration, and installs
// the logger. Logs go to logOut unless the config names a file.
func loadConfig(logOut io.Writer) (*config.Config, io.Closer, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	closer, err := config.SetupLogging(cfg.Logging, logOut)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

// loadEnvFile loads KEY=VALUE pairs without overriding variables that are
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) {
		if wd, err := os.Getwd(); err == nil {
			path = filepath.Join(wd, path)
		}
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Debug("loaded environment file", "path", path)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("eactranslator %s\n", version)
		},
	}
}
