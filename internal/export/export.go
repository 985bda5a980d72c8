// Package export predicts the next payment date for every customer in a
// history file and writes the results to a spreadsheet-friendly CSV.
// Predictions run on a small worker pool; customers that cannot be
// predicted are skipped and counted, never aborting the export.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/internal/engine"
	"github.com/lendops/paydate/pkg/logger"
)

// Predictor is the slice of the engine the exporter needs.
type Predictor interface {
	PredictNextPaymentDate(ctx context.Context, customerID, dataPath string) (*engine.Result, error)
}

// HistoryLoader lists the customers to export.
type HistoryLoader interface {
	Load(ctx context.Context, path string) ([]payment.Record, error)
}

// Exporter writes portfolio-wide prediction CSVs.
type Exporter struct {
	predictor Predictor
	loader    HistoryLoader
	workers   int
	progress  bool
	log       logger.Logger
}

// Summary reports what an export run produced.
type Summary struct {
	ExportID  string `json:"export_id"`
	Path      string `json:"path"`
	Requested int    `json:"requested"`
	Written   int    `json:"written"`
	Skipped   int    `json:"skipped"`
}

// New creates an Exporter with default configuration options.
func New(predictor Predictor, loader HistoryLoader, opts ...Option) *Exporter {
	e := &Exporter{
		predictor: predictor,
		loader:    loader,
		workers:   defaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter) logger() logger.Logger {
	if e.log != nil {
		return e.log
	}
	return logger.Get()
}

// Run predicts for every customer in dataPath and writes the CSV to
// outPath. Output rows follow the history file's customer order even
// though predictions run concurrently.
func (e *Exporter) Run(ctx context.Context, dataPath, outPath string) (*Summary, error) {
	records, err := e.loader.Load(ctx, dataPath)
	if err != nil {
		return nil, err
	}
	ids := payment.CustomerIDs(records)

	summary := &Summary{
		ExportID:  uuid.New().String(),
		Path:      outPath,
		Requested: len(ids),
	}
	e.logger().Info(ctx, "starting prediction export",
		logger.String("export_id", summary.ExportID),
		logger.Int("customers", len(ids)),
		logger.Int("workers", e.workers),
	)

	results := e.predictAll(ctx, ids, dataPath)

	f, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Customer ID", "Last Demand Date", "Last Payment", "Next Demand Date",
		"Predicted Date", "Avg Delay", "Confidence",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		if r == nil {
			summary.Skipped++
			continue
		}
		row := []string{
			ids[i],
			orBlank(r.LastDemandDate),
			r.LastPaymentDate,
			orBlank(r.NextDemandDate),
			r.PredictedPaymentDate,
			strconv.FormatFloat(r.AverageDelay, 'f', 2, 64),
			fmt.Sprintf("%.1f%%", r.ConfidenceScore*100),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row for %s: %w", ids[i], err)
		}
		summary.Written++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush %s: %w", outPath, err)
	}

	e.logger().Info(ctx, "prediction export finished",
		logger.String("export_id", summary.ExportID),
		logger.Int("written", summary.Written),
		logger.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// predictAll fans customer ids out to the worker pool. The result slice
// is index-aligned with ids; skipped customers leave a nil.
func (e *Exporter) predictAll(ctx context.Context, ids []string, dataPath string) []*engine.Result {
	results := make([]*engine.Result, len(ids))

	var bar *progressbar.ProgressBar
	if e.progress {
		bar = progressbar.Default(int64(len(ids)), "predicting")
	}

	type job struct {
		index int
		id    string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				result, err := e.predictor.PredictNextPaymentDate(ctx, j.id, dataPath)
				if err != nil {
					e.logger().Warn(ctx, "skipping customer in export",
						logger.String("customer_id", j.id),
						logger.Error(err),
					)
				} else {
					results[j.index] = result
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

	for i, id := range ids {
		jobs <- job{index: i, id: id}
	}
	close(jobs)
	wg.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
	return results
}

func orBlank(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
