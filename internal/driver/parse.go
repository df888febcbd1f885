// Package driver orchestrates parse/check/format runs for the CLI:
// single files, stdin, and whole directories in parallel.
package driver

import (
	"lingo/internal/ast"
	"lingo/internal/diag"
	"lingo/internal/parser"
	"lingo/internal/sema"
	"lingo/internal/source"
)

// ParseResult is one parsed file with its FileSet, so callers can
// resolve spans for rendering.
type ParseResult struct {
	FileSet  *source.FileSet
	File     *source.File
	Resource *ast.Resource
	Bag      *diag.Bag
}

// Parse loads and parses one FTL file from disk.
func Parse(path string, opts parser.Options) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return parseInto(fs, fileID, opts), nil
}

// ParseSource parses in-memory content (stdin, tests) under a display
// name.
func ParseSource(name string, content []byte, opts parser.Options) *ParseResult {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(name, content)
	return parseInto(fs, fileID, opts)
}

func parseInto(fs *source.FileSet, fileID source.FileID, opts parser.Options) *ParseResult {
	file := fs.Get(fileID)
	result := parser.Parse(file, opts)
	result.Bag.Sort()
	return &ParseResult{
		FileSet:  fs,
		File:     file,
		Resource: result.Resource,
		Bag:      result.Bag,
	}
}

// Check parses and validates one file; parse and validation
// diagnostics land in one sorted bag.
func Check(path string, popts parser.Options, vopts sema.Options) (*ParseResult, error) {
	parsed, err := Parse(path, popts)
	if err != nil {
		return nil, err
	}
	verdict := sema.Validate(parsed.Resource, vopts)
	parsed.Bag.Merge(verdict.Bag)
	parsed.Bag.Sort()
	return parsed, nil
}
