package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"viewck/internal/diag"
	"viewck/internal/observ"
	"viewck/internal/source"
	"viewck/internal/trace"
)

// DirResult holds the per-file results of a directory check in path order.
type DirResult struct {
	Files []*FileResult
	// Timing sums the phases of every file; nil without EnableTimings.
	Timing *observ.Report
}

// CheckDir проверяет все *.vw файлы под root параллельно. Каждый файл
// получает свой FileSet и свои таблицы, общего изменяемого состояния нет.
func CheckDir(ctx context.Context, loader *Loader, root string, opts CheckOptions, jobs int) (*DirResult, error) {
	files, err := loader.List(ctx, root)
	if err != nil {
		return nil, err
	}
	return CheckFiles(ctx, loader, files, opts, jobs)
}

// CheckFiles checks the given paths with at most jobs workers. A file
// that fails to load gets an IOLoadFileError diagnostic instead of
// aborting the run; only cancellation stops it.
func CheckFiles(ctx context.Context, loader *Loader, files []string, opts CheckOptions, jobs int) (*DirResult, error) {
	out := &DirResult{Files: make([]*FileResult, len(files))}
	if len(files) == 0 {
		return out, nil
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// Настраиваем параллелизм
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	var agg *observ.Aggregate
	if opts.EnableTimings {
		agg = observ.NewAggregate()
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check_dir", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := CheckFile(gctx, loader, path, opts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				res = loadFailure(path, err, opts.MaxDiagnostics)
			}
			if res.Timing != nil {
				agg.Add(*res.Timing)
			}
			// индекс i уникален для горутины, мьютекс не нужен
			out.Files[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	if agg != nil {
		report := agg.Report()
		out.Timing = &report
	}
	emit(opts.Progress, Event{Stage: StageCheck, Status: StatusDone})
	return out, nil
}

func loadFailure(path string, err error, maxDiagnostics int) *FileResult {
	bag := diag.NewBag(maxDiagnostics)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()))
	return &FileResult{Path: path, FileSet: source.NewFileSet(), Bag: bag}
}

// HasErrors reports whether any file has an error diagnostic.
func (r *DirResult) HasErrors() bool {
	for _, f := range r.Files {
		if f != nil && f.Bag.HasErrors() {
			return true
		}
	}
	return false
}
