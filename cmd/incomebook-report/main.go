// Command incomebook-report writes one report to a file or stdout without
// running the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"incomebook/internal/backend"
	"incomebook/internal/config"
	"incomebook/internal/export"
	"incomebook/internal/ledger"
	"incomebook/internal/log"
	"incomebook/internal/report"
	"incomebook/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		kind   = flag.String("kind", "yearly", "report kind: detailed, monthly or yearly")
		format = flag.String("format", "csv", "output format: csv, xlsx or pdf")
		from   = flag.String("from", "", "detailed: first date, YYYY-MM-DD")
		to     = flag.String("to", "", "detailed: last date, YYYY-MM-DD")
		year   = flag.Int("year", 0, "monthly: restrict to one year")
		out    = flag.String("out", "", "output file or directory; - for stdout (default: generated name in the current directory)")
	)
	flag.Parse()

	cfg := config.Load()
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentExport,
		Output:    os.Stderr,
	})

	if err := run(cfg, logger, *kind, *format, *from, *to, *year, *out); err != nil {
		fmt.Fprintln(os.Stderr, "incomebook-report:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger, kind, format, from, to string, year int, out string) error {
	k, err := report.ParseKind(kind)
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	req, err := report.NewRequest(k, from, to, year)
	if err != nil {
		return err
	}

	ctx := context.Background()
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBucket(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	exporter := export.NewExporter(ledger.New(res.Bucket, logger), logger)
	art, err := exporter.Generate(ctx, export.Options{Request: req, Format: f})
	if err != nil {
		return err
	}

	switch {
	case out == "-":
		_, err = os.Stdout.Write(art.Content)
		return err
	case out == "":
		out = art.Filename
	default:
		if info, err := os.Stat(out); err == nil && info.IsDir() {
			out = filepath.Join(out, art.Filename)
		}
	}
	if err := storage.WriteFileAtomic(out, art.Content); err != nil {
		return err
	}
	logger.Info("Report written",
		log.NewFields().WithReport(string(k), string(f), out).ToSlice()...)
	return nil
}
