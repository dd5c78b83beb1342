// Package bundle turns one resolved module entry point into a single bundled
// output file.
package bundle

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/matzehuels/esmap/pkg/errors"
)

// Options describes one bundle.
type Options struct {
	Entry     string // entry point file
	Outfile   string // destination of the bundle
	Minify    bool
	KeepNames bool // preserve function and class names under minification
}

// Bundler produces exactly one output file per call or returns an error.
type Bundler interface {
	Bundle(ctx context.Context, opts Options) error
}

// ESBuild bundles with esbuild into a single browser ES module.
type ESBuild struct {
	// Target is the esbuild language target. Zero means ESNext.
	Target api.Target
}

// Bundle implements Bundler. Cancelling ctx aborts the build.
func (b ESBuild) Bundle(ctx context.Context, opts Options) error {
	if opts.Entry == "" {
		return errors.New(errors.ErrCodeInvalidInput, "bundle entry point is required")
	}
	if opts.Outfile == "" {
		return errors.New(errors.ErrCodeInvalidInput, "bundle output file is required")
	}

	target := b.Target
	if target == api.DefaultTarget {
		target = api.ESNext
	}
	build, cerr := api.Context(api.BuildOptions{
		EntryPoints:       []string{opts.Entry},
		Outfile:           opts.Outfile,
		Bundle:            true,
		Write:             true,
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		Target:            target,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		KeepNames:         opts.KeepNames,
		LogLevel:          api.LogLevelSilent,
	})
	if cerr != nil {
		return failed(opts.Entry, cerr.Errors)
	}
	defer build.Dispose()

	done := make(chan api.BuildResult, 1)
	go func() { done <- build.Rebuild() }()

	select {
	case <-ctx.Done():
		build.Cancel()
		<-done
		return ctx.Err()
	case res := <-done:
		if len(res.Errors) > 0 {
			return failed(opts.Entry, res.Errors)
		}
		return nil
	}
}

func failed(entry string, msgs []api.Message) error {
	return errors.New(errors.ErrCodeBundleFailed, "cannot bundle %s: %s", entry, describe(msgs))
}

func describe(msgs []api.Message) string {
	if len(msgs) == 0 {
		return "unknown error"
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if loc := m.Location; loc != nil {
			parts = append(parts, fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, m.Text))
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "; ")
}
