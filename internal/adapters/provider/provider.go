// Package provider supplies chart requests and their ephemerides.
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/okian/vedichart/internal/domain/model"
)

// Provider defines the interface for ephemeris sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Requests returns every chart request the source holds, each with the
	// ephemeris text or records for its bodies.
	Requests(ctx context.Context) ([]model.Request, error)
}

// FileProvider reads job files from disk.
type FileProvider struct {
	paths []string
}

// NewFileProvider creates a provider over the given job files.
func NewFileProvider(paths ...string) *FileProvider {
	return &FileProvider{paths: paths}
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "file" }

// Requests implements Provider. Files are read in order; every YAML
// document in a file is one request.
func (p *FileProvider) Requests(ctx context.Context) ([]model.Request, error) {
	if len(p.paths) == 0 {
		return nil, ErrNoJobs
	}

	var out []model.Request
	for _, path := range p.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open job %s: %w", path, err)
		}
		reqs, err := DecodeJobs(f)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", path, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close job %s: %w", path, closeErr)
		}
		out = append(out, reqs...)
	}
	return out, nil
}

// ErrNoJobs is returned when a provider has nothing to read.
var ErrNoJobs = errors.New("no job files given")
