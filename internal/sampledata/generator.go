// Package sampledata fabricates plausible installment payment histories
// for demos and load tests. Customers are assigned a payment tendency
// (on-time, early, or late) and a roughly monthly cycle; generation is
// deterministic for a fixed seed and clock.
package sampledata

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/pkg/logger"
)

// Customer payment tendencies and their delay ranges in days.
const (
	tendencyOnTime = iota
	tendencyEarly
	tendencyLate
	tendencyCount
)

const (
	amountMin = 5000.0
	amountMax = 50000.0
)

// baseIntervals are the monthly cycle lengths a customer can be on.
var baseIntervals = []int{28, 30, 31, 32}

// Generator fabricates payment histories.
type Generator struct {
	customers int
	payments  int
	seed      int64
	now       func() time.Time
}

// New creates a Generator with default configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		customers: defaultCustomers,
		payments:  defaultPayments,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate fabricates the records. Payments that would land in the
// future are dropped, so customers late in the cycle may end up with
// fewer records than the configured target.
func (g *Generator) Generate() []payment.Record {
	rng := rand.New(rand.NewSource(g.seed))
	now := g.now()
	base := now.AddDate(0, 0, -defaultHistoryDays)

	var records []payment.Record
	for c := 1; c <= g.customers; c++ {
		customerID := fmt.Sprintf("CUST_%04d", c)
		interval := baseIntervals[rng.Intn(len(baseIntervals))]
		delayMin, delayMax := delayRange(rng.Intn(tendencyCount))

		scheduled := base
		for p := 0; p < g.payments; p++ {
			scheduled = scheduled.AddDate(0, 0, interval+rng.Intn(7)-3)
			paid := scheduled.AddDate(0, 0, delayMin+rng.Intn(delayMax-delayMin+1))
			if paid.After(now) {
				break
			}

			due := scheduled
			amount := amountMin + rng.Float64()*(amountMax-amountMin)
			amount = float64(int(amount*100)) / 100
			records = append(records, payment.Record{
				CustomerID:    customerID,
				PaymentDate:   paid,
				ScheduledDate: &due,
				Amount:        &amount,
			})
		}
	}
	return records
}

func delayRange(tendency int) (min, max int) {
	switch tendency {
	case tendencyEarly:
		return -5, 0
	case tendencyLate:
		return 0, 10
	default:
		return -2, 2
	}
}

// WriteCSV generates records and writes them to path in the history
// file format, creating parent directories as needed. Returns the
// number of records written.
func (g *Generator) WriteCSV(ctx context.Context, path string) (int, error) {
	records := g.Generate()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create data directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"customer_id", "payment_date", "scheduled_date", "amount"}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.CustomerID,
			r.PaymentDate.Format(payment.DateLayout),
			r.ScheduledDate.Format(payment.DateLayout),
			strconv.FormatFloat(*r.Amount, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush %s: %w", path, err)
	}

	logger.Get().Info(ctx, "sample data written",
		logger.String("path", path),
		logger.Int("records", len(records)),
		logger.Int("customers", g.customers),
	)
	return len(records), nil
}
