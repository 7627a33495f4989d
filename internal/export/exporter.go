// Package export encodes report tables as CSV, XLSX or PDF artifacts and
// delivers them to sinks.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"incomebook/internal/cache"
	"incomebook/internal/ledger"
	"incomebook/internal/log"
	"incomebook/internal/report"
)

// Source provides the entry collection reports are built from.
type Source interface {
	Load(ctx context.Context) (ledger.Snapshot, error)
}

// Options selects the report and its encoding.
type Options struct {
	Request report.Request
	Format  Format
}

func (o Options) key() string {
	var b strings.Builder
	b.WriteString(string(o.Format))
	b.WriteByte('|')
	switch r := o.Request.(type) {
	case report.Detailed:
		b.WriteString("detailed|" + r.From.String() + "|" + r.To.String())
	case report.Monthly:
		b.WriteString("monthly|" + strconv.Itoa(r.Year))
	case report.Yearly:
		b.WriteString("yearly")
	}
	return b.String()
}

type Exporter struct {
	source Source
	cache  *cache.LRUCache[Artifact]
	group  singleflight.Group
	logger *log.Logger
}

type ExporterOption func(*Exporter)

// WithCache memoizes artifacts per request and stored collection version.
func WithCache(c *cache.LRUCache[Artifact]) ExporterOption {
	return func(x *Exporter) { x.cache = c }
}

func NewExporter(source Source, logger *log.Logger, opts ...ExporterOption) *Exporter {
	if logger == nil {
		logger = log.Discard()
	}
	x := &Exporter{source: source, logger: logger.WithComponent(log.ComponentExport)}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Generate builds and encodes the report described by opts from the current
// collection. Identical concurrent requests share one build.
func (x *Exporter) Generate(ctx context.Context, opts Options) (Artifact, error) {
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return Artifact{}, err
	}
	if opts.Request == nil {
		return Artifact{}, report.ErrUnknownKind
	}
	if err := report.Validate(opts.Request); err != nil {
		return Artifact{}, err
	}

	snap, err := x.source.Load(ctx)
	if err != nil {
		return Artifact{}, fmt.Errorf("load entries: %w", err)
	}

	key := opts.key() + "@" + snap.Digest
	if x.cache != nil && !snap.Corrupt {
		if a, ok := x.cache.Get(key); ok {
			return a, nil
		}
	}

	v, err, _ := x.group.Do(key, func() (interface{}, error) {
		table, err := report.Build(snap.Entries, opts.Request)
		if err != nil {
			return Artifact{}, err
		}
		content, err := Encode(table, opts.Format)
		if err != nil {
			return Artifact{}, err
		}
		sum := sha256.Sum256(content)
		a := Artifact{
			Filename:    Filename(opts.Request, opts.Format),
			ContentType: opts.Format.ContentType(),
			Format:      opts.Format,
			Content:     content,
			Table:       table,
			ETag:        `"` + hex.EncodeToString(sum[:16]) + `"`,
		}
		if x.cache != nil && !snap.Corrupt {
			x.cache.Set(key, a)
		}
		x.logger.DebugContext(ctx, "Report generated",
			log.NewFields().
				WithReport(string(opts.Request.Kind()), string(opts.Format), a.Filename).
				ToSlice()...)
		return a, nil
	})
	if err != nil {
		return Artifact{}, err
	}
	return v.(Artifact), nil
}

// Export generates the artifact and hands it to sink.
func (x *Exporter) Export(ctx context.Context, opts Options, sink Sink) (Artifact, error) {
	a, err := x.Generate(ctx, opts)
	if err != nil {
		return Artifact{}, err
	}
	if err := sink.Deliver(ctx, a); err != nil {
		log.LogError(ctx, x.logger, "Failed to deliver export", err, log.OpExport,
			log.NewFields().WithReport(string(opts.Request.Kind()), string(a.Format), a.Filename))
		return a, fmt.Errorf("deliver %s: %w", a.Filename, err)
	}
	x.logger.InfoContext(ctx, "Report exported",
		append(log.NewFields().
			WithReport(string(opts.Request.Kind()), string(a.Format), a.Filename).
			ToSlice(), log.FieldBytes, len(a.Content))...)
	return a, nil
}
