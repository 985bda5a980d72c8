// Package service provides the core business service that implements
// the dependencies required by the HTTP API: prediction, training,
// catalog queries, and optional LLM explanations over one shared
// payment-history source.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/lendops/paydate/internal/adapters/history"
	"github.com/lendops/paydate/internal/adapters/llm"
	"github.com/lendops/paydate/internal/domain/feature"
	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/internal/domain/regress"
	"github.com/lendops/paydate/internal/engine"
	"github.com/lendops/paydate/pkg/logger"
)

// Prediction is one API-facing prediction, optionally annotated with an
// LLM explanation.
type Prediction struct {
	engine.Result
	Explanation string `json:"explanation,omitempty"`
}

// BatchPrediction is the API-facing batch result. Failed customers are
// counted, not listed; their errors were already logged. DueSoon counts
// predictions landing within the configured horizon.
type BatchPrediction struct {
	Predictions []Prediction `json:"predictions"`
	Requested   int          `json:"requested"`
	Succeeded   int          `json:"succeeded"`
	DueSoon     int          `json:"due_within_horizon"`
	HorizonDays int          `json:"horizon_days"`
	Insights    string       `json:"insights,omitempty"`
}

// CustomerSummary is the API-facing catalog entry for one customer.
type CustomerSummary struct {
	CustomerID    string `json:"customer_id"`
	TotalPayments int    `json:"total_payments"`
	FirstPayment  string `json:"first_payment"`
	LastPayment   string `json:"last_payment"`
}

// HistoryRow is the API-facing view of one raw payment record.
type HistoryRow struct {
	PaymentDate   string   `json:"payment_date"`
	ScheduledDate *string  `json:"scheduled_date,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	DelayDays     float64  `json:"delay_days"`
}

// Service implements the API dependencies for the prediction system.
type Service struct {
	mu sync.Mutex

	// Core components
	engine    *engine.Engine
	loader    *history.Loader
	explainer *llm.Explainer

	// Configuration
	dataPath       string
	modelPath      string
	minHistory     int
	horizonDays    int
	featureWindows []int
	backend        string
	treeCount      int
	maxTreeDepth   int
	learningRate   float64
	testFraction   float64
	splitSeed      int64
	historyCache   bool
	openaiKey      string
	openaiModel    string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath:     "data/payment_history.csv",
		modelPath:    "models/paydate_model.json",
		backend:      regress.BackendGBRT,
		horizonDays:  30,
		historyCache: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components. Loading an existing model
// artifact is attempted but not required: a fresh deployment trains its
// first model through the API.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.loader = history.NewLoader(history.WithCache(s.historyCache))

	var engineerOpts []feature.Option
	if len(s.featureWindows) > 0 {
		engineerOpts = append(engineerOpts, feature.WithWindows(s.featureWindows))
	}

	var gbrtOpts []regress.GBRTOption
	if s.treeCount > 0 {
		gbrtOpts = append(gbrtOpts, regress.WithTreeCount(s.treeCount))
	}
	if s.maxTreeDepth > 0 {
		gbrtOpts = append(gbrtOpts, regress.WithMaxDepth(s.maxTreeDepth))
	}
	if s.learningRate > 0 {
		gbrtOpts = append(gbrtOpts, regress.WithLearningRate(s.learningRate))
	}

	engineOpts := []engine.Option{
		engine.WithLoader(s.loader),
		engine.WithEngineer(feature.New(engineerOpts...)),
		engine.WithModelPath(s.modelPath),
		engine.WithMinHistoryRecords(s.minHistory),
		engine.WithBackend(s.backend),
		engine.WithGBRTOptions(gbrtOpts...),
		engine.WithTestFraction(s.testFraction),
		engine.WithLogger(s.logger),
	}
	if s.splitSeed != 0 {
		engineOpts = append(engineOpts, engine.WithSplitSeed(s.splitSeed))
	}
	s.engine = engine.New(engineOpts...)

	s.explainer = llm.NewExplainer(s.openaiKey,
		llm.WithModel(s.openaiModel),
		llm.WithLogger(s.logger),
	)

	if err := s.engine.LoadModel(ctx, ""); err != nil {
		s.logger.Info(ctx, "no model artifact yet; train to create one",
			logger.String("model_path", s.modelPath),
			logger.Error(err),
		)
	}

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.String("data_path", s.dataPath),
		logger.String("backend", s.backend),
		logger.Bool("model_loaded", s.engine.Loaded()),
		logger.Bool("llm_enabled", s.explainer.Enabled()),
	)
	return nil
}

// Stop releases service resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped")
}

// ModelLoaded reports whether a trained model is resident.
func (s *Service) ModelLoaded() bool {
	return s.engine != nil && s.engine.Loaded()
}

// LLMEnabled reports whether the explainer has credentials.
func (s *Service) LLMEnabled() bool {
	return s.explainer != nil && s.explainer.Enabled()
}

// Predict runs a single-customer prediction, attaching an explanation
// when requested and available. Explainer failures degrade to a bare
// numeric prediction rather than failing the request.
func (s *Service) Predict(ctx context.Context, customerID string, useLLM bool) (*Prediction, error) {
	result, err := s.engine.PredictNextPaymentDate(ctx, customerID, s.dataPath)
	if err != nil {
		return nil, err
	}

	p := &Prediction{Result: *result}
	if useLLM && s.explainer.Enabled() {
		explanation, err := s.explainer.ExplainPrediction(ctx, result)
		if err != nil {
			s.logger.Warn(ctx, "explanation unavailable",
				logger.String("customer_id", customerID),
				logger.Error(err),
			)
		} else {
			p.Explanation = explanation
		}
	}
	return p, nil
}

// PredictBatch predicts for many customers with per-item fault
// isolation, optionally adding portfolio-level insights. An empty id
// list means every customer in the history file.
func (s *Service) PredictBatch(ctx context.Context, customerIDs []string, useLLM bool) (*BatchPrediction, error) {
	if len(customerIDs) == 0 {
		records, err := s.loader.Load(ctx, s.dataPath)
		if err != nil {
			return nil, err
		}
		customerIDs = payment.CustomerIDs(records)
	}
	results := s.engine.PredictBatch(ctx, customerIDs, s.dataPath)

	batch := &BatchPrediction{
		Predictions: make([]Prediction, len(results)),
		Requested:   len(customerIDs),
		Succeeded:   len(results),
		HorizonDays: s.horizonDays,
	}
	for i, r := range results {
		batch.Predictions[i] = Prediction{Result: *r}
		if r.DaysUntilPayment <= s.horizonDays {
			batch.DueSoon++
		}
	}

	if useLLM && s.explainer.Enabled() && len(results) > 0 {
		insights, err := s.explainer.GenerateInsights(ctx, results)
		if err != nil {
			s.logger.Warn(ctx, "batch insights unavailable", logger.Error(err))
		} else {
			batch.Insights = insights
		}
	}
	return batch, nil
}

// Train fits a fresh model and makes it the resident model. An empty
// dataPath means the configured history file.
func (s *Service) Train(ctx context.Context, dataPath string) (*engine.TrainingMetrics, error) {
	if dataPath == "" {
		dataPath = s.dataPath
	}
	return s.engine.Train(ctx, dataPath)
}

// Customers summarizes every customer in the history file: identifier,
// payment count, and first/last payment dates.
func (s *Service) Customers(ctx context.Context) ([]CustomerSummary, error) {
	records, err := s.loader.Load(ctx, s.dataPath)
	if err != nil {
		return nil, err
	}

	ids := payment.CustomerIDs(records)
	summaries := make([]CustomerSummary, 0, len(ids))
	for _, id := range ids {
		mine := payment.FilterCustomer(records, id)
		summaries = append(summaries, CustomerSummary{
			CustomerID:    id,
			TotalPayments: len(mine),
			FirstPayment:  mine[0].PaymentDate.Format(payment.DateLayout),
			LastPayment:   mine[len(mine)-1].PaymentDate.Format(payment.DateLayout),
		})
	}
	return summaries, nil
}

// ErrUnknownCustomer is returned by CustomerHistory for identifiers
// absent from the history file.
var ErrUnknownCustomer = errors.New("unknown customer")

// CustomerHistory returns every raw payment record for one customer,
// with computed delays, ordered by payment date.
func (s *Service) CustomerHistory(ctx context.Context, customerID string) ([]HistoryRow, error) {
	records, err := s.loader.Load(ctx, s.dataPath)
	if err != nil {
		return nil, err
	}
	payment.ComputeDelays(records)

	mine := payment.FilterCustomer(records, customerID)
	if len(mine) == 0 {
		return nil, ErrUnknownCustomer
	}

	rows := make([]HistoryRow, len(mine))
	for i, r := range mine {
		row := HistoryRow{
			PaymentDate: r.PaymentDate.Format(payment.DateLayout),
			DelayDays:   r.DelayDays,
			Amount:      r.Amount,
		}
		if r.ScheduledDate != nil {
			scheduled := r.ScheduledDate.Format(payment.DateLayout)
			row.ScheduledDate = &scheduled
		}
		rows[i] = row
	}
	return rows, nil
}
