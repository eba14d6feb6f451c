package cli

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/Picocrypt/zxcvbn-go"
	"github.com/spf13/cobra"

	"cokacdir/internal/enc"
	"cokacdir/internal/keystore"
	"cokacdir/internal/util"
)

var packCmd = &cobra.Command{
	Use:   "pack [dir]",
	Short: "Encrypt the files of a directory into .cokacenc chunks",
	Long: `Encrypt every regular file of a directory into encrypted chunk
files and delete the originals. Hidden files and existing .cokacenc
files are skipped. Files larger than the split size are spread across
multiple chunks.

Without -p or -P the per-machine key file is used, creating it on
first use.

Examples:
  # Encrypt the current directory with the key file
  cokacdir pack

  # Encrypt with an explicit password (visible in shell history)
  cokacdir pack /data/photos -p "correct horse battery staple"

  # Read the password from stdin (for scripts)
  echo "mypassword" | cokacdir pack /data/photos -P

  # Split files into 64 MiB chunks
  cokacdir pack /data/photos --split-size 64`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPack,
}

var (
	packPassword      string
	packPasswordStdin bool
	packSplitSizeMiB  int64
	packQuiet         bool
)

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().StringVarP(&packPassword, "password", "p", "", "Encryption password (default: key file)")
	packCmd.Flags().BoolVarP(&packPasswordStdin, "password-stdin", "P", false, "Read password from stdin")
	packCmd.Flags().Int64Var(&packSplitSizeMiB, "split-size", 0, "Chunk size in MiB (default: COKACDIR_SPLIT_SIZE_MIB)")
	packCmd.Flags().BoolVarP(&packQuiet, "quiet", "q", false, "Suppress progress output")
}

// targetDir resolves and validates the optional directory argument.
func targetDir(args []string) (string, error) {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}
	return dir, nil
}

// resolvePassword returns the password bytes, or nil when the key file
// should be used instead.
func resolvePassword(passwordFlag string, stdinFlag bool, warnWeak bool) ([]byte, error) {
	if stdinFlag {
		pw, err := ReadPasswordFromStdin()
		if err != nil {
			return nil, err
		}
		return []byte(pw), nil
	}
	if passwordFlag == "" {
		return nil, nil
	}
	if warnWeak {
		if score := zxcvbn.PasswordStrength(passwordFlag, nil).Score; score < 3 {
			fmt.Fprintf(os.Stderr, "Warning: weak password (strength %d/4)\n", score)
		}
	}
	return []byte(passwordFlag), nil
}

// resolveKeyPath returns the key file location, creating the key on
// first use.
func resolveKeyPath() (string, error) {
	if cfg != nil && cfg.KeyPath != "" {
		return keystore.EnsureKeyAt(cfg.KeyPath)
	}
	return keystore.EnsureKey()
}

// drainProgress launches the pipeline and consumes its progress stream
// until the terminal Completed message.
func drainProgress(reporter *Reporter, run func(progress chan<- enc.ProgressMessage, cancel *atomic.Bool)) {
	progress := make(chan enc.ProgressMessage, 16)
	go run(progress, reporter.CancelFlag())
	for {
		if reporter.Handle(<-progress) {
			return
		}
	}
}

func runPack(cmd *cobra.Command, args []string) error {
	dir, err := targetDir(args)
	if err != nil {
		return err
	}

	splitSize := packSplitSizeMiB * util.MiB
	if packSplitSizeMiB <= 0 {
		if packSplitSizeMiB < 0 {
			return fmt.Errorf("--split-size must be positive, got %d", packSplitSizeMiB)
		}
		if cfg != nil {
			splitSize = cfg.SplitSize()
		} else {
			splitSize = enc.DefaultSplitSize
		}
	}

	password, err := resolvePassword(packPassword, packPasswordStdin, true)
	if err != nil {
		return err
	}

	reporter := NewReporter(packQuiet)
	globalReporter = reporter

	if password != nil {
		drainProgress(reporter, func(progress chan<- enc.ProgressMessage, cancel *atomic.Bool) {
			enc.PackDirectory(dir, password, splitSize, progress, cancel)
		})
	} else {
		keyPath, err := resolveKeyPath()
		if err != nil {
			return err
		}
		drainProgress(reporter, func(progress chan<- enc.ProgressMessage, cancel *atomic.Bool) {
			enc.PackDirectoryWithProgress(dir, keyPath, splitSize, progress, cancel)
		})
	}
	reporter.Finish()

	if reporter.Failure > 0 {
		reporter.PrintError("%d file(s) failed", reporter.Failure)
		return fmt.Errorf("pack completed with %d failure(s)", reporter.Failure)
	}
	reporter.PrintSuccess("Encrypted %d file(s)", reporter.Success)
	return nil
}
