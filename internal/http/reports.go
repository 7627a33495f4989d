package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"incomebook/internal/amqp"
	"incomebook/internal/export"
	"incomebook/internal/log"
	"incomebook/internal/report"
)

// reportOptions resolves the kind path value and the format, from, to and
// year query parameters. Every failure is a bad request.
func reportOptions(r *http.Request) (export.Options, error) {
	kind, err := report.ParseKind(r.PathValue("kind"))
	if err != nil {
		return export.Options{}, badRequest(err)
	}
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		return export.Options{}, badRequest(err)
	}
	year, err := parseYear(r)
	if err != nil {
		return export.Options{}, err
	}
	req, err := report.NewRequest(kind, q.Get("from"), q.Get("to"), year)
	if err != nil {
		return export.Options{}, badRequest(err)
	}
	return export.Options{Request: req, Format: format}, nil
}

// handleReport streams a report as a file download. A matching If-None-Match
// answers 304 without a body.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	opts, err := reportOptions(r)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	art, err := s.reports.Generate(r.Context(), opts)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	h := w.Header()
	h.Set("ETag", art.ETag)
	h.Set("Cache-Control", "private, no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == art.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Type", art.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	h.Set("Content-Length", strconv.Itoa(len(art.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Content); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Report write interrupted", log.FieldError, err.Error())
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Report downloaded",
		log.NewFields().WithReport(string(opts.Request.Kind()), string(art.Format), art.Filename).ToSlice()...)
}

type exportRequestBody struct {
	Kind   string `json:"kind"`
	Format string `json:"format"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Year   int    `json:"year,omitempty"`
}

type exportAccepted struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
}

// handleQueueExport validates an export request and hands it to the worker.
func (s *Server) handleQueueExport(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "export queue is not configured"})
		return
	}
	var body exportRequestBody
	if err := decodeJSON(w, r, true, &body); err != nil {
		writeError(w, r, log.OpPublish, err)
		return
	}
	kind, err := report.ParseKind(body.Kind)
	if err == nil {
		_, err = export.ParseFormat(body.Format)
	}
	if err == nil {
		_, err = report.NewRequest(kind, body.From, body.To, body.Year)
	}
	if err != nil {
		writeError(w, r, log.OpPublish, badRequest(err))
		return
	}

	msg := amqp.NewExportRequestMessage(string(kind), body.Format, body.From, body.To, body.Year)
	if err := s.queue.PublishExportRequest(r.Context(), msg); err != nil {
		if errors.Is(err, amqp.ErrCircuitOpen) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "export queue is unavailable"})
			return
		}
		writeError(w, r, log.OpPublish, err)
		return
	}
	writeJSON(w, http.StatusAccepted, exportAccepted{ID: msg.ID, Status: "queued", RequestedAt: msg.RequestedAt})
}
