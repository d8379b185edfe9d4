package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// SourceExt is the extension of checked files.
const SourceExt = ".vw"

// Loader reads sources through afs, so a check root may be a local path
// or any URL afs understands (mem://, file://).
type Loader struct {
	fs afs.Service
}

func NewLoader() *Loader {
	return &Loader{fs: afs.New()}
}

// IsDir reports whether location names a directory.
func (l *Loader) IsDir(ctx context.Context, location string) (bool, error) {
	obj, err := l.fs.Object(ctx, location)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", location, err)
	}
	return obj.IsDir(), nil
}

// List returns every *.vw file below root, sorted. Files under hidden
// directories are skipped.
func (l *Loader) List(ctx context.Context, root string) ([]string, error) {
	var files []string
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() || hidden(parent) {
			return true, nil
		}
		if strings.HasSuffix(info.Name(), SourceExt) {
			files = append(files, localPath(url.Join(url.Join(baseURL, parent), info.Name())))
		}
		return true, nil
	}
	if err := l.fs.Walk(ctx, root, visitor); err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

// Read returns the content of one source.
func (l *Loader) Read(ctx context.Context, location string) ([]byte, error) {
	data, err := l.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

// localPath strips the file:// scheme afs adds to local paths; other
// schemes are kept as is.
func localPath(location string) string {
	if url.Scheme(location, "") == "file" {
		return url.Path(location)
	}
	return location
}

func hidden(parent string) bool {
	for _, part := range strings.Split(parent, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
