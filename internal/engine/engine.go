// Package engine orchestrates training, model persistence, and single
// and batch payment-date prediction.
//
// The engine moves from Unloaded to Loaded through Train or LoadModel
// and stays Loaded for the process lifetime; re-training or re-loading
// idempotently replaces the resident model behind one atomic pointer
// swap, so a concurrent prediction can never observe a regressor
// without its feature schema.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lendops/paydate/internal/adapters/history"
	"github.com/lendops/paydate/internal/domain/feature"
	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/internal/domain/regress"
	"github.com/lendops/paydate/pkg/logger"
	"github.com/lendops/paydate/pkg/metrics"
)

// Engine serves payment-date predictions. Construct once, Train or
// LoadModel, then call the predict methods concurrently.
type Engine struct {
	loader     HistoryLoader
	engineer   *feature.Engineer
	modelPath  string
	minHistory int

	backend      string
	gbrtOpts     []regress.GBRTOption
	testFraction float64
	splitSeed    int64

	log logger.Logger

	// model holds the resident trained model. Swapped whole so the
	// regressor and its schema become visible together.
	model  atomic.Pointer[Model]
	loadMu sync.Mutex
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		loader:       history.NewLoader(),
		engineer:     feature.New(),
		modelPath:    "models/paydate_model.json",
		minHistory:   defaultMinHistoryRecords,
		backend:      regress.BackendGBRT,
		testFraction: defaultTestFraction,
		splitSeed:    defaultSplitSeed,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) logger() logger.Logger {
	if e.log != nil {
		return e.log
	}
	return logger.Get()
}

// Loaded reports whether a trained model is resident.
func (e *Engine) Loaded() bool {
	return e.model.Load() != nil
}

// LoadModel resolves and loads a persisted model artifact. An empty
// path means the engine's configured default. On success the model and
// its schema replace the resident state atomically; on failure the
// previously loaded model, if any, keeps serving.
func (e *Engine) LoadModel(ctx context.Context, path string) error {
	if path == "" {
		path = e.modelPath
	}
	resolved, err := resolveModelPath(path)
	if err != nil {
		return err
	}
	m, err := loadModelFile(resolved)
	if err != nil {
		return err
	}

	e.model.Store(m)
	metrics.UpdateModelLoaded(true)
	metrics.UpdateFeatureCount(len(m.FeatureNames))
	e.logger().Info(ctx, "model loaded",
		logger.String("path", resolved),
		logger.Int("features", len(m.FeatureNames)),
	)
	return nil
}

// ensureLoaded lazily loads the default artifact on first use.
func (e *Engine) ensureLoaded(ctx context.Context) (*Model, error) {
	if m := e.model.Load(); m != nil {
		return m, nil
	}
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if m := e.model.Load(); m != nil {
		return m, nil
	}
	if err := e.LoadModel(ctx, ""); err != nil {
		return nil, err
	}
	return e.model.Load(), nil
}

// PredictNextPaymentDate predicts when a customer's next installment
// payment will arrive.
//
// When the customer's latest record carries a demand date, the
// deterministic projection is preferred over the learned model: the
// next demand date plus the customer's rounded average delay. It is
// more interpretable and tied directly to the contractual due-date
// cycle. The regressor only serves histories without demand dates.
func (e *Engine) PredictNextPaymentDate(ctx context.Context, customerID, dataPath string) (*Result, error) {
	started := time.Now()

	model, err := e.ensureLoaded(ctx)
	if err != nil {
		metrics.RecordPredictionError("model_not_found")
		return nil, err
	}

	records, err := e.loader.Load(ctx, dataPath)
	if err != nil {
		metrics.RecordPredictionError("load_failed")
		return nil, err
	}
	payment.ComputeDelays(records)

	customerHistory := payment.FilterCustomer(records, customerID)
	if len(customerHistory) < e.minHistory {
		metrics.RecordPredictionError("insufficient_history")
		return nil, fmt.Errorf("%w: customer %s has %d records, needs at least %d",
			ErrInsufficientHistory, customerID, len(customerHistory), e.minHistory)
	}

	vec := e.engineer.Vector(records, customerID)
	if vec == nil {
		metrics.RecordPredictionError("feature_engineering")
		return nil, fmt.Errorf("%w: customer %s", ErrFeatureEngineering, customerID)
	}

	avgDelay, _ := vec.Get("avg_delay")
	last := customerHistory[len(customerHistory)-1]

	var (
		predicted      time.Time
		lastDemandStr  *string
		nextDemandStr  *string
		predictionPath string
	)

	if last.ScheduledDate != nil {
		lastDemand := *last.ScheduledDate
		nextDemand := NextDemandDate(lastDemand)
		predicted = nextDemand.AddDate(0, 0, int(math.Round(avgDelay)))
		lastDemandStr = dateString(lastDemand)
		nextDemandStr = dateString(nextDemand)
		predictionPath = metrics.PathDemand
	} else {
		values, filled := vec.AlignTo(model.FeatureNames)
		if len(filled) > 0 {
			metrics.RecordSchemaColumnsFilled(len(filled))
			e.logger().Warn(ctx, "feature columns zero-filled for schema alignment",
				logger.String("customer_id", customerID),
				logger.Any("columns", filled),
			)
		}
		days := int(math.Round(model.Regressor.Predict(values)))
		if days < 0 {
			days = 0
		}
		predicted = last.PaymentDate.AddDate(0, 0, days)
		predictionPath = metrics.PathModel
	}

	result := &Result{
		CustomerID:           customerID,
		PredictedPaymentDate: predicted.Format(payment.DateLayout),
		DaysUntilPayment:     int(payment.DaysBetween(last.PaymentDate, predicted)),
		LastPaymentDate:      last.PaymentDate.Format(payment.DateLayout),
		LastDemandDate:       lastDemandStr,
		NextDemandDate:       nextDemandStr,
		ConfidenceScore:      confidence(vec),
		PaymentHistory:       historyTail(customerHistory),
		AverageDelay:         avgDelay,
		PaymentCount:         len(customerHistory),
	}

	metrics.RecordPrediction(predictionPath, result.ConfidenceScore)
	metrics.RecordPredictionLatency(float64(time.Since(started).Milliseconds()))
	e.logger().Debug(ctx, "prediction served",
		logger.String("customer_id", customerID),
		logger.String("path", predictionPath),
		logger.String("predicted", result.PredictedPaymentDate),
		logger.Float64("confidence", result.ConfidenceScore),
	)
	return result, nil
}

// PredictBatch predicts for many customers with per-item fault
// isolation: a failing customer is logged and skipped, never aborting
// the batch. The output is the successfully predicted subset in input
// order, with no placeholders for skipped identifiers.
func (e *Engine) PredictBatch(ctx context.Context, customerIDs []string, dataPath string) []*Result {
	metrics.RecordBatchSize(len(customerIDs))

	results := make([]*Result, 0, len(customerIDs))
	for _, id := range customerIDs {
		result, err := e.PredictNextPaymentDate(ctx, id, dataPath)
		if err != nil {
			metrics.RecordBatchSkipped()
			e.logger().Warn(ctx, "skipping customer in batch prediction",
				logger.String("customer_id", id),
				logger.Error(err),
			)
			continue
		}
		results = append(results, result)
	}
	return results
}

func historyTail(records []payment.Record) []payment.HistoryEntry {
	tail := payment.LastN(records, historyTailLength)
	out := make([]payment.HistoryEntry, len(tail))
	for i, r := range tail {
		out[i] = payment.HistoryEntry{
			PaymentDate: r.PaymentDate.Format(payment.DateLayout),
			DelayDays:   r.DelayDays,
		}
	}
	return out
}

func dateString(t time.Time) *string {
	s := t.Format(payment.DateLayout)
	return &s
}
