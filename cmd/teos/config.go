package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/torlnapp/teos/internal/logging"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and TEOS_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → TEOS_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("teos")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/teos/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/teos", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("TEOS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "warn", "log level: debug|info|warn|error")
}

// addPSKFlags adds the flags that select a pre-shared key generation.
func addPSKFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("psk-id", "", "pre-shared key identifier")
	f.String("psk-secret", "", "pre-shared secret (hex, base64, text or @file)")
	f.String("psk-label", "", "HKDF info label of the key schedule")
	f.String("psk-salt", "", "HKDF salt of the key schedule (hex or base64)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) *slog.Logger {
	return logging.Setup(
		logging.ParseFormat(v.GetString("log-format")),
		logging.ParseLevel(v.GetString("log-level")),
	)
}
