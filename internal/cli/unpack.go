package cli

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"cokacdir/internal/enc"
)

var unpackCmd = &cobra.Command{
	Use:   "unpack [dir]",
	Short: "Restore the original files from .cokacenc chunks",
	Long: `Decrypt every chunk group of a directory back into its original
file, verifying the embedded MD5 checksum, and delete the chunks on
success. Groups that fail to decrypt or verify are left in place.

Without -p or -P the per-machine key file is used.

Examples:
  # Restore the current directory with the key file
  cokacdir unpack

  # Restore with an explicit password
  cokacdir unpack /data/photos -p "correct horse battery staple"

  # Read the password from stdin (for scripts)
  echo "mypassword" | cokacdir unpack /data/photos -P`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUnpack,
}

var (
	unpackPassword      string
	unpackPasswordStdin bool
	unpackQuiet         bool
)

func init() {
	rootCmd.AddCommand(unpackCmd)

	unpackCmd.Flags().StringVarP(&unpackPassword, "password", "p", "", "Decryption password (default: key file)")
	unpackCmd.Flags().BoolVarP(&unpackPasswordStdin, "password-stdin", "P", false, "Read password from stdin")
	unpackCmd.Flags().BoolVarP(&unpackQuiet, "quiet", "q", false, "Suppress progress output")
}

func runUnpack(cmd *cobra.Command, args []string) error {
	dir, err := targetDir(args)
	if err != nil {
		return err
	}

	password, err := resolvePassword(unpackPassword, unpackPasswordStdin, false)
	if err != nil {
		return err
	}

	reporter := NewReporter(unpackQuiet)
	globalReporter = reporter

	if password != nil {
		drainProgress(reporter, func(progress chan<- enc.ProgressMessage, cancel *atomic.Bool) {
			enc.UnpackDirectory(dir, password, progress, cancel)
		})
	} else {
		keyPath, err := resolveKeyPath()
		if err != nil {
			return err
		}
		drainProgress(reporter, func(progress chan<- enc.ProgressMessage, cancel *atomic.Bool) {
			enc.UnpackDirectoryWithProgress(dir, keyPath, progress, cancel)
		})
	}
	reporter.Finish()

	if reporter.Failure > 0 {
		reporter.PrintError("%d group(s) failed", reporter.Failure)
		return fmt.Errorf("unpack completed with %d failure(s)", reporter.Failure)
	}
	reporter.PrintSuccess("Restored %d file(s)", reporter.Success)
	return nil
}
