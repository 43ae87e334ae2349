package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/passkeep/pkg/manager"
	"github.com/doodlesbykumbi/passkeep/pkg/store"
	"github.com/doodlesbykumbi/passkeep/pkg/store/file"
)

var passwordWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print account names whenever the password file changes",
	Long: `Watch the password file of the file backend and print the stored account
names each time another process changes it.

Only the file backend can be watched.

Example:
  passkeepctl password watch
  PASSKEEP_FILE_PATH=/tmp/vault.json passkeepctl password watch`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchPasswords(cmd.Context(), cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch passwords: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	passwordCmd.AddCommand(passwordWatchCmd)
}

func watchPasswords(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if kind, _ := cfg.Kind(); kind != store.KindFile {
		return fmt.Errorf("watch requires the file backend, configured backend is %q", kind)
	}

	logger := newLogger(cfg)
	opts := []file.Option{file.WithLogger(logger)}
	if cfg.FileLenient {
		opts = append(opts, file.WithLenientLoad())
	}
	fileStore := file.New(cfg.FilePath, opts...)
	m := manager.New(fileStore, logger)

	// Saves replace the file by rename, so watch the directory.
	dir := filepath.Dir(fileStore.Path())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	fmt.Printf("Watching %s for changes\n", fileStore.Path())
	printNames(ctx, m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(fileStore.Path()) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			fmt.Printf("[%s] %s changed\n", time.Now().Format(time.RFC3339), fileStore.Path())
			printNames(ctx, m)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func printNames(ctx context.Context, m *manager.Manager) {
	names, err := m.ListPasswords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing passwords: %v\n", err)
		return
	}
	if len(names) == 0 {
		fmt.Println("No passwords stored.")
		return
	}
	fmt.Printf("Stored account names: %s\n", strings.Join(names, ", "))
}
