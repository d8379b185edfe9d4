package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"viewck/internal/diag"
	"viewck/internal/diagfmt"
	"viewck/internal/driver"
	"viewck/internal/project"
	"viewck/internal/sema"
	"viewck/internal/ui"
	"viewck/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.vw|directory>",
	Short: "Check view dependencies and exclusivity",
	Long: `Check a source file or every *.vw file under a directory: dependencies of
non-escapable results, scoped access regions, exclusivity and consumes`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	addOutputFlags(checkCmd)
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().String("liveness", "", "override the manifest liveness mode (last-use|lexical)")
	checkCmd.Flags().String("emit-deps", "", "print the dependency graph after checking (text|yaml)")
	checkCmd.Flags().Bool("emit-events", false, "print the lowered access event stream")
	checkCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	checkCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
}

// addOutputFlags registers the flags shared by check and watch.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("preview", false, "show fix previews (implies --suggest)")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

type outputFlags struct {
	format           string
	noWarnings       bool
	warningsAsErrors bool
	withNotes        bool
	suggest          bool
	preview          bool
	fullPath         bool
	color            bool
	maxDiagnostics   int
	timings          bool
}

type checkFlags struct {
	outputFlags
	jobs       int
	liveness   string
	emitDeps   string
	emitEvents bool
	noCache    bool
	ui         uiMode
}

func readOutputFlags(cmd *cobra.Command) (outputFlags, error) {
	var (
		f   outputFlags
		err error
	)
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "short", "json", "sarif":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	if f.noWarnings, err = cmd.Flags().GetBool("no-warnings"); err != nil {
		return f, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if f.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return f, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if f.noWarnings && f.warningsAsErrors {
		return f, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if f.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.suggest, err = cmd.Flags().GetBool("suggest"); err != nil {
		return f, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if f.preview, err = cmd.Flags().GetBool("preview"); err != nil {
		return f, fmt.Errorf("failed to get preview flag: %w", err)
	}
	if f.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if f.maxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return f, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if f.color, err = useColor(cmd, os.Stdout); err != nil {
		return f, err
	}
	return f, nil
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	out, err := readOutputFlags(cmd)
	f := checkFlags{outputFlags: out}
	if err != nil {
		return f, err
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.liveness, err = cmd.Flags().GetString("liveness"); err != nil {
		return f, fmt.Errorf("failed to get liveness flag: %w", err)
	}
	if f.emitDeps, err = cmd.Flags().GetString("emit-deps"); err != nil {
		return f, fmt.Errorf("failed to get emit-deps flag: %w", err)
	}
	switch f.emitDeps {
	case "", "text", "yaml":
	default:
		return f, fmt.Errorf("unknown --emit-deps value %q (expected text|yaml)", f.emitDeps)
	}
	if f.emitEvents, err = cmd.Flags().GetBool("emit-events"); err != nil {
		return f, fmt.Errorf("failed to get emit-events flag: %w", err)
	}
	if f.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return f, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	return f, nil
}

// checkOptions merges defaults, the manifest found above target and flags,
// in that order of precedence.
func checkOptions(cmd *cobra.Command, target string, out outputFlags, liveness string) (driver.CheckOptions, error) {
	opts := driver.CheckOptions{
		Sema:             sema.DefaultOptions(),
		MaxDiagnostics:   out.maxDiagnostics,
		IgnoreWarnings:   out.noWarnings,
		WarningsAsErrors: out.warningsAsErrors,
		EnableTimings:    out.timings,
	}
	if !strings.Contains(target, "://") {
		manifest, ok, err := project.Load(target)
		if err != nil {
			return opts, err
		}
		if ok {
			if err := manifest.Config.CheckTool(version.Version); err != nil {
				return opts, fmt.Errorf("%s: %w", manifest.Path, err)
			}
			if err := manifest.Config.Apply(&opts.Sema); err != nil {
				return opts, fmt.Errorf("%s: %w", manifest.Path, err)
			}
			if n := manifest.Config.Check.MaxDiagnostics; n > 0 && !cmd.Root().PersistentFlags().Changed("max-diagnostics") {
				opts.MaxDiagnostics = n
			}
		}
	}
	if liveness != "" {
		mode, err := sema.ParseLiveness(liveness)
		if err != nil {
			return opts, err
		}
		opts.Sema.Liveness = mode
	}
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()

	target := args[0]
	opts, err := checkOptions(cmd, target, flags.outputFlags, flags.liveness)
	if err != nil {
		return err
	}
	opts.Sema.RecordEvents = flags.emitEvents
	// из кеша приходят только диагностики, графа там нет
	if !flags.noCache && flags.emitDeps == "" && !flags.emitEvents {
		cache, err := driver.OpenDiskCache("viewck")
		if err != nil {
			if !quiet(cmd) {
				fmt.Fprintf(cmd.ErrOrStderr(), "viewck: cache disabled: %v\n", err)
			}
		} else {
			opts.Cache = cache
		}
	}

	loader := driver.NewLoader()
	isDir, err := loader.IsDir(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	files := []string{target}
	if isDir {
		if files, err = loader.List(ctx, target); err != nil {
			return fmt.Errorf("failed to list %s: %w", target, err)
		}
	}

	var res *driver.DirResult
	if isDir && shouldUseTUI(flags.ui) && !quiet(cmd) {
		res, err = checkWithUI(ctx, loader, target, files, opts, flags.jobs)
	} else {
		res, err = driver.CheckFiles(ctx, loader, files, opts, flags.jobs)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if err := renderResults(w, res, flags.outputFlags, os.Args[1:]); err != nil {
		return err
	}
	if err := emitArtifacts(w, res, flags); err != nil {
		return err
	}
	if flags.timings && res.Timing != nil && len(res.Files) > 1 && !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "total: %s\n", res.Timing.Summary())
	}
	if res.HasErrors() {
		return driver.ErrHasErrors
	}
	return nil
}

func checkWithUI(ctx context.Context, loader *driver.Loader, title string, files []string, opts driver.CheckOptions, jobs int) (*driver.DirResult, error) {
	events := make(chan driver.Event, 256)
	type outcome struct {
		res *driver.DirResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		o := opts
		o.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckFiles(ctx, loader, files, o, jobs)
		close(events)
		done <- outcome{res, err}
	}()

	uiErr := ui.RunProgress(title, files, events, tea.WithOutput(os.Stderr))
	// модель могла выйти раньше, не даём воркерам заблокироваться
	for range events {
	}
	o := <-done
	if o.err != nil {
		return o.res, o.err
	}
	return o.res, uiErr
}

func renderResults(w io.Writer, res *driver.DirResult, f outputFlags, invocation []string) error {
	pathMode := diagfmt.PathModeAuto
	if f.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := f.suggest || f.preview

	var inputs []diagfmt.Input
	for _, file := range res.Files {
		if file != nil {
			inputs = append(inputs, diagfmt.Input{Bag: file.Bag, FileSet: file.FileSet})
		}
	}

	switch f.format {
	case "pretty":
		opts := diagfmt.PrettyOpts{
			Color:       f.color,
			PathMode:    pathMode,
			ShowNotes:   f.withNotes,
			ShowFixes:   showFixes,
			ShowPreview: f.preview,
		}
		first := true
		for _, in := range inputs {
			if in.Bag.Len() == 0 {
				continue
			}
			if !first {
				fmt.Fprintln(w)
			}
			first = false
			diagfmt.Pretty(w, in.Bag, in.FileSet, opts)
		}
	case "short":
		for _, in := range inputs {
			if out := diag.FormatShortDiagnostics(in.Bag.Items(), in.FileSet, f.withNotes); out != "" {
				fmt.Fprintln(w, out)
			}
		}
	case "json":
		return diagfmt.JSONAll(w, inputs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     f.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  f.preview,
		})
	case "sarif":
		return diagfmt.SarifAll(w, inputs, diagfmt.SarifRunMeta{
			ToolName:       "viewck",
			ToolVersion:    version.Version,
			InvocationArgs: invocation,
		})
	}
	return nil
}

// emitArtifacts prints the dependency graph and event stream of every
// file that reached the checker.
func emitArtifacts(w io.Writer, res *driver.DirResult, f checkFlags) error {
	if f.emitDeps == "" && !f.emitEvents {
		return nil
	}
	for _, file := range res.Files {
		if file == nil || file.Sema == nil {
			continue
		}
		if f.emitDeps != "" {
			dump := sema.BuildDepsDump(file.FileSet, file.Sema)
			fmt.Fprintf(w, "\n== DEPS %s ==\n", file.Path)
			var err error
			if f.emitDeps == "yaml" {
				err = dump.WriteYAML(w)
			} else {
				err = dump.WriteText(w)
			}
			if err != nil {
				return fmt.Errorf("failed to write dependency graph: %w", err)
			}
		}
		if f.emitEvents {
			fmt.Fprintf(w, "\n== EVENTS %s ==\n", file.Path)
			if err := sema.WriteEvents(w, file.Sema); err != nil {
				return fmt.Errorf("failed to write events: %w", err)
			}
		}
	}
	return nil
}
