// Package worker runs queued report exports.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"incomebook/internal/amqp"
	"incomebook/internal/export"
	"incomebook/internal/log"
	"incomebook/internal/report"
)

// Exporter generates a report and hands it to a sink.
type Exporter interface {
	Export(ctx context.Context, opts export.Options, sink export.Sink) (export.Artifact, error)
}

// ExportWorker turns export request messages into delivered artifacts.
type ExportWorker struct {
	exporter Exporter
	sink     export.Sink
	logger   *log.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

// Stats counts handled requests since start.
type Stats struct {
	Processed int64
	Failed    int64
}

func NewExportWorker(exporter Exporter, sink export.Sink, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		exporter: exporter,
		sink:     sink,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Options converts a queued message into export options. Errors are
// permanent: the same message will never succeed.
func Options(msg *amqp.ExportRequestMessage) (export.Options, error) {
	kind, err := report.ParseKind(msg.Kind)
	if err != nil {
		return export.Options{}, amqp.Permanent(err)
	}
	format, err := export.ParseFormat(msg.Format)
	if err != nil {
		return export.Options{}, amqp.Permanent(err)
	}
	req, err := report.NewRequest(kind, msg.From, msg.To, msg.Year)
	if err != nil {
		return export.Options{}, amqp.Permanent(err)
	}
	return export.Options{Request: req, Format: format}, nil
}

// HandleExportRequest processes a single export request message.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	w.logger.InfoContext(ctx, "Processing export request",
		"id", msg.ID, log.FieldReportKind, msg.Kind, log.FieldFormat, msg.Format)

	opts, err := Options(msg)
	if err != nil {
		w.failed.Add(1)
		w.logger.WarnContext(ctx, "Rejected export request",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeValidation).
				WithOperation(log.OpConsume).
				ToSlice()...)
		return err
	}

	a, err := w.exporter.Export(ctx, opts, w.sink)
	if err != nil {
		w.failed.Add(1)
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("export %s: %w", msg.ID, err)
	}

	w.processed.Add(1)
	w.logger.InfoContext(ctx, "Export request completed",
		append(log.NewFields().WithReport(msg.Kind, string(a.Format), a.Filename).ToSlice(), "id", msg.ID)...)
	return nil
}

func (w *ExportWorker) Stats() Stats {
	return Stats{Processed: w.processed.Load(), Failed: w.failed.Load()}
}
