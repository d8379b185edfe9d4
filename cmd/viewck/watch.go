package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"viewck/internal/driver"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [directory]",
	Short: "Re-check sources whenever they change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	addOutputFlags(watchCmd)
	watchCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	watchCmd.Flags().Duration("debounce", 150*time.Millisecond, "coalesce file events for this long")
}

func runWatch(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	if !isLocalDir(root) {
		return fmt.Errorf("%s is not a local directory", root)
	}
	out, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := checkOptions(cmd, root, out, "")
	if err != nil {
		return err
	}
	cache, err := driver.OpenDiskCache("viewck")
	if err == nil {
		opts.Cache = cache
	}

	loader := driver.NewLoader()
	session := watchSession{loader: loader, opts: opts, out: out, jobs: jobs, w: cmd.OutOrStdout()}

	files, err := loader.List(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", root, err)
	}
	session.check(ctx, files)

	w := &driver.Watcher{
		Root:     root,
		Debounce: debounce,
		OnChange: func(ctx context.Context, changed []string) {
			var present []string
			for _, p := range changed {
				if _, err := os.Stat(p); err == nil {
					present = append(present, p)
				}
			}
			session.check(ctx, present)
		},
		OnError: func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
		},
	}
	return w.Run(ctx)
}

type watchSession struct {
	loader *driver.Loader
	opts   driver.CheckOptions
	out    outputFlags
	jobs   int
	w      io.Writer
}

func (s *watchSession) check(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}
	res, err := driver.CheckFiles(ctx, s.loader, files, s.opts, s.jobs)
	if err != nil {
		if ctx.Err() == nil {
			fmt.Fprintf(s.w, "check failed: %v\n", err)
		}
		return
	}
	if err := renderResults(s.w, res, s.out, nil); err != nil {
		fmt.Fprintf(s.w, "render failed: %v\n", err)
	}
	fmt.Fprintln(s.w, watchSummary(res, time.Now()))
}

func watchSummary(res *driver.DirResult, now time.Time) string {
	errCount, warnCount := 0, 0
	for _, f := range res.Files {
		switch {
		case f == nil:
		case f.Bag.HasErrors():
			errCount++
		case f.Bag.HasWarnings():
			warnCount++
		}
	}
	return fmt.Sprintf("[%s] checked %d files, %d with errors, %d with warnings", now.Format("15:04:05"), len(res.Files), errCount, warnCount)
}

func isLocalDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
