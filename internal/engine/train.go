package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lendops/paydate/internal/domain/feature"
	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/internal/domain/regress"
	"github.com/lendops/paydate/pkg/logger"
	"github.com/lendops/paydate/pkg/metrics"
)

// Train builds a training table from the payment history at dataPath,
// fits a fresh regressor, evaluates it on a held-out split, persists
// the artifact, and swaps it in as the resident model. The split is
// derived from the configured seed so repeated runs on identical data
// produce identical models and metrics. On any failure the previously
// resident model keeps serving untouched.
func (e *Engine) Train(ctx context.Context, dataPath string) (*TrainingMetrics, error) {
	started := time.Now()

	records, err := e.loader.Load(ctx, dataPath)
	if err != nil {
		return nil, err
	}
	payment.ComputeDelays(records)

	table := e.engineer.TrainingTable(records)
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: no customer has enough history to train on", ErrInsufficientData)
	}

	trainRows, trainTargets, testRows, testTargets := e.split(table)
	if len(trainRows) == 0 {
		return nil, fmt.Errorf("%w: training split is empty", ErrInsufficientData)
	}

	reg, err := regress.New(e.backend, e.gbrtOpts...)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(trainRows, trainTargets); err != nil {
		return nil, fmt.Errorf("fitting regressor: %w", err)
	}

	tm := &TrainingMetrics{}
	tm.TrainMAE, tm.TrainRMSE = evaluate(reg, trainRows, trainTargets)
	if len(testRows) > 0 {
		tm.TestMAE, tm.TestRMSE = evaluate(reg, testRows, testTargets)
	}

	m := &Model{Regressor: reg, FeatureNames: table.Columns}
	if err := saveModel(m, e.modelPath); err != nil {
		return nil, fmt.Errorf("saving model artifact: %w", err)
	}

	e.model.Store(m)
	metrics.RecordTrainingRun(float64(time.Since(started).Milliseconds()))
	metrics.UpdateTrainingMetrics(tm.TrainMAE, tm.TestMAE, tm.TrainRMSE, tm.TestRMSE)
	metrics.UpdateModelLoaded(true)
	metrics.UpdateFeatureCount(len(table.Columns))

	e.logger().Info(ctx, "model trained",
		logger.String("backend", e.backend),
		logger.Int("examples", len(table.Rows)),
		logger.Int("features", len(table.Columns)),
		logger.Float64("train_mae", tm.TrainMAE),
		logger.Float64("test_mae", tm.TestMAE),
		logger.Duration("elapsed", time.Since(started)),
	)
	return tm, nil
}

// split partitions the table into train and test sets by a seeded
// shuffle. The test set takes ceil(testFraction*n) examples but never
// all of them; with a single example everything trains.
func (e *Engine) split(table *feature.Table) (trainRows [][]float64, trainTargets []float64, testRows [][]float64, testTargets []float64) {
	n := len(table.Rows)
	perm := rand.New(rand.NewSource(e.splitSeed)).Perm(n)

	nTest := int(math.Ceil(e.testFraction * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}

	for i, idx := range perm {
		if i < nTest {
			testRows = append(testRows, table.Rows[idx])
			testTargets = append(testTargets, table.Targets[idx])
			continue
		}
		trainRows = append(trainRows, table.Rows[idx])
		trainTargets = append(trainTargets, table.Targets[idx])
	}
	return trainRows, trainTargets, testRows, testTargets
}

func evaluate(reg regress.Regressor, rows [][]float64, targets []float64) (mae, rmse float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	var absSum, sqSum float64
	for i, row := range rows {
		diff := reg.Predict(row) - targets[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	n := float64(len(rows))
	return absSum / n, math.Sqrt(sqSum / n)
}
