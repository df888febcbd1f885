package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"lingo/internal/diag"
	"lingo/internal/parser"
	"lingo/internal/sema"
	"lingo/internal/source"
)

// CheckDirResult is the outcome for one file of a directory check.
type CheckDirResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
}

// listFTLFiles returns every *.ftl file under dir, sorted for
// deterministic output order.
func listFTLFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".ftl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CheckDir parses and validates every *.ftl file under dir in
// parallel. Files that fail to load get a bag with one I/O diagnostic
// instead of failing the whole run.
func CheckDir(ctx context.Context, dir string, popts parser.Options, vopts sema.Options, jobs int) (*source.FileSet, []CheckDirResult, error) {
	files, err := listFTLFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// file loading mutates the FileSet, so it happens up front on one
	// goroutine; parsing afterwards is read-only on the set
	results := make([]CheckDirResult, len(files))
	fileIDs := make([]source.FileID, len(files))
	loaded := make([]bool, len(files))
	for i, path := range files {
		fileID, loadErr := fileSet.Load(path)
		if loadErr != nil {
			// register an empty stand-in so the diagnostic's span
			// still resolves to this path
			standIn := fileSet.AddVirtual(path, nil)
			bag := diag.NewBag(1)
			bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  loadErr.Error(),
				Primary:  source.Span{File: standIn},
			})
			results[i] = CheckDirResult{Path: path, FileID: standIn, Bag: bag}
			continue
		}
		fileIDs[i] = fileID
		loaded[i] = true
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		if !loaded[i] {
			continue
		}
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			file := fileSet.Get(fileIDs[i])
			parsed := parser.Parse(file, popts)
			verdict := sema.Validate(parsed.Resource, vopts)
			parsed.Bag.Merge(verdict.Bag)
			parsed.Bag.Sort()
			results[i] = CheckDirResult{Path: path, FileID: fileIDs[i], Bag: parsed.Bag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fileSet, results, nil
}
