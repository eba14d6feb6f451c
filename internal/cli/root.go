// Package cli implements the cokacdir command-line interface.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cokacdir/internal/config"
	"cokacdir/internal/log"
)

// Version is set by main.go.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "cokacdir",
	Short: "Chunked file encryption and directory comparison",
	Long: `cokacdir encrypts the files of a directory into self-describing
.cokacenc chunks and restores them, and compares two directory trees
recursively.

Encryption uses AES-256-CBC with a key derived via PBKDF2-HMAC-SHA512.
Each chunk carries its own salt, IV, and metadata, so any subset of
chunk files can be inspected independently. By default the password is
a per-machine key file under ~/.cokacdir/credential/.`,
	Version: Version,
}

var (
	cfg     *config.Config
	verbose bool
)

// globalReporter receives cancellation from the signal handler.
var globalReporter *Reporter

// ensureConfig loads the environment configuration once.
func ensureConfig() error {
	if cfg != nil {
		return nil
	}
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// Execute runs the CLI application.
func Execute(version string) {
	Version = version
	rootCmd.Version = version

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
			fmt.Fprintln(os.Stderr, "\nCancelling operation...")
		} else {
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	rootCmd.SetVersionTemplate("cokacdir {{.Version}}\n")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := ensureConfig(); err != nil {
			return err
		}
		if verbose {
			log.EnableStderrLogging(log.LevelDebug)
		}
		return nil
	}
}
