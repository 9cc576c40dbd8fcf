package main

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const debounce = 100 * time.Millisecond

func newCheckCmd(a *app) *cobra.Command {
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Report diagnostics without running",
		Long: `Parses and compiles the translation units and prints every
diagnostic. With --watch, checks again whenever one of the files changes,
until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			check := func() error {
				_, ok, err := a.compile(cmd.Context(), cmd.OutOrStdout(), args...)
				if err == nil && !ok {
					err = ErrNotCompiled
				}
				return err
			}

			if !watchFlag {
				return check()
			}

			if err = check(); err != nil {
				printErrors(cmd.ErrOrStderr(), err)
			}
			return watch(cmd.Context(), a.logger, args, func() {
				_, _ = cmd.OutOrStdout().Write([]byte(labelStyle.Render(f("--- %v", time.Now().Format(time.TimeOnly))) + "\n"))
				if err := check(); err != nil {
					printErrors(cmd.ErrOrStderr(), err)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "check again on every change")
	return cmd
}

// watch calls changed after writes to any of paths settle, until ctx is
// done. The directories are watched so editors that replace files on
// save are seen.
func watch(ctx context.Context, logger *zap.Logger, paths []string, changed func()) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	defer watcher.Close()

	var files []string
	for _, path := range paths {
		var abs string
		if abs, err = filepath.Abs(path); err != nil {
			return
		}
		files = append(files, abs)
		dir := filepath.Dir(abs)
		if !slices.Contains(watcher.WatchList(), dir) {
			if err = watcher.Add(dir); err != nil {
				return
			}
		}
	}
	logger.Debug("watching", zap.Strings("files", files))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !slices.Contains(files, filepath.Clean(event.Name)) {
				continue
			}
			logger.Debug("changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch", zap.Error(err))
		case <-timer.C:
			changed()
		}
	}
}
