package driver

import (
	"context"
	"errors"
	"fmt"

	"viewck/internal/ast"
	"viewck/internal/diag"
	"viewck/internal/observ"
	"viewck/internal/parser"
	"viewck/internal/project"
	"viewck/internal/sema"
	"viewck/internal/source"
	"viewck/internal/trace"
	"viewck/internal/version"
)

// CheckOptions содержит опции проверки одного файла или директории.
type CheckOptions struct {
	Sema             sema.Options
	MaxDiagnostics   int
	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool
	// Cache is consulted and filled when set. Results served from the
	// cache carry diagnostics only, so callers that need the dependency
	// graph leave it nil.
	Cache    *DiskCache
	Progress ProgressSink
}

// FileResult is everything known about one checked file.
type FileResult struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	Builder *ast.Builder
	ASTFile ast.FileID
	// Sema is nil when parsing failed or the result came from the cache.
	Sema   *sema.Result
	Cached bool
	Timing *observ.Report
}

// CheckFile loads path through loader and checks it.
func CheckFile(ctx context.Context, loader *Loader, path string, opts CheckOptions) (*FileResult, error) {
	timer := newTimer(opts)
	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	idx := timer.Begin("load")
	data, err := loader.Read(ctx, path)
	timer.End(idx, "")
	if err != nil {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
		return nil, err
	}
	fs := source.NewFileSet()
	fileID := fs.Add(path, data, 0)
	return checkLoaded(ctx, fs, fileID, opts, timer)
}

// CheckSource checks a file already registered in fs.
func CheckSource(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts CheckOptions) (*FileResult, error) {
	return checkLoaded(ctx, fs, fileID, opts, newTimer(opts))
}

func newTimer(opts CheckOptions) *observ.Timer {
	if opts.EnableTimings {
		return observ.NewTimer()
	}
	return nil
}

func checkLoaded(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts CheckOptions, timer *observ.Timer) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("unknown file id %d", fileID)
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, file.Path, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpan(ctx, span)

	res := &FileResult{
		Path:    file.Path,
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	reporter := diag.BagReporter{Bag: res.Bag}

	key := project.Combine(project.Digest(file.Hash), cacheKeyPart(&opts.Sema))
	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			// битый кеш не мешает проверке
			trace.Point(tracer, trace.ScopeFile, "cache_error", err.Error(), span.ID())
		}
		if hit {
			restoreDiags(&payload, fileID, res.Bag)
			res.Cached = true
			finish(res, opts, timer)
			span.End("cached")
			emit(opts.Progress, Event{File: file.Path, Stage: StageCheck, Status: StatusCached})
			return res, nil
		}
	}

	emit(opts.Progress, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
	idx := timer.Begin("parse")
	res.Builder = ast.NewBuilder(ast.Hints{}, nil)
	parsed := parser.ParseSource(file, res.Builder, reporter)
	res.ASTFile = parsed.File
	note := ""
	if fileNode := res.Builder.Files.Get(parsed.File); fileNode != nil {
		note = fmt.Sprintf("items=%d", len(fileNode.Items))
	}
	timer.End(idx, note)

	// синтаксические ошибки: сема не запускается
	if !res.Bag.HasErrors() {
		emit(opts.Progress, Event{File: file.Path, Stage: StageCheck, Status: StatusWorking})
		idx = timer.Begin("check")
		semaOpts := opts.Sema
		semaOpts.Reporter = reporter
		semaOpts.Table = nil
		out := sema.Check(ctx, res.Builder, parsed.File, semaOpts)
		res.Sema = &out
		timer.End(idx, fmt.Sprintf("funcs=%d", len(out.Funcs)))
	}

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, payloadFromDiags(file.Path, project.Digest(file.Hash), res.Bag.Items())); err != nil {
			trace.Point(tracer, trace.ScopeFile, "cache_error", err.Error(), span.ID())
		}
	}
	finish(res, opts, timer)
	span.End(fmt.Sprintf("diags=%d", res.Bag.Len()))

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{File: file.Path, Stage: StageCheck, Status: status})
	return res, nil
}

// finish drops repeated diagnostics, applies severity filters and attaches
// the timing report.
func finish(res *FileResult, opts CheckOptions, timer *observ.Timer) {
	// кеш и несколько репортеров могут выдать одно и то же
	res.Bag.Dedup()
	if opts.IgnoreWarnings {
		res.Bag.Filter(func(d *diag.Diagnostic) bool {
			return d.Severity != diag.SevWarning && d.Severity != diag.SevInfo
		})
	}
	if opts.WarningsAsErrors {
		res.Bag.Transform(func(d *diag.Diagnostic) *diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}
	res.Bag.Sort()
	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(res.Bag, timingPayload{
			Kind:    "file",
			Path:    res.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
}

func cacheKeyPart(opts *sema.Options) []byte {
	k := project.OptionsKey(version.Version, opts)
	return k[:]
}

// ErrHasErrors is returned by callers that turn diagnostics into an exit
// status.
var ErrHasErrors = errors.New("errors reported")
