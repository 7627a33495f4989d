package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"incomebook/internal/report"
	"incomebook/internal/storage"
)

// Artifact is an encoded report ready for delivery. Content may be shared
// with the exporter cache and must not be modified.
type Artifact struct {
	Filename    string
	ContentType string
	Format      Format
	Content     []byte
	Table       report.Table
	// ETag is a strong validator derived from the content.
	ETag string
}

// Sink delivers an artifact somewhere outside the process.
type Sink interface {
	Deliver(ctx context.Context, a Artifact) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a Artifact) error

func (f SinkFunc) Deliver(ctx context.Context, a Artifact) error { return f(ctx, a) }

// Sinks delivers to each sink in order and joins their errors.
type Sinks []Sink

func (s Sinks) Deliver(ctx context.Context, a Artifact) error {
	var errs []error
	for _, sink := range s {
		if err := sink.Deliver(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DirSink writes artifacts into a directory using their filename.
type DirSink struct {
	Dir string
}

func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &DirSink{Dir: dir}, nil
}

func (s *DirSink) Deliver(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Filename == "" || filepath.Base(a.Filename) != a.Filename {
		return fmt.Errorf("invalid artifact filename %q", a.Filename)
	}
	if err := storage.WriteFileAtomic(filepath.Join(s.Dir, a.Filename), a.Content); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
