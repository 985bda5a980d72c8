// Package history reads payment-history files into domain records. Each
// Load re-reads and re-parses the source by default, trading efficiency
// for freshness; the optional cache short-circuits only when the file is
// provably unchanged.
package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/pkg/metrics"
)

// Source column names. customer_id and payment_date are required;
// scheduled_date and amount are optional; anything else is ignored.
const (
	colCustomerID    = "customer_id"
	colPaymentDate   = "payment_date"
	colScheduledDate = "scheduled_date"
	colAmount        = "amount"
)

// Loader parses CSV payment histories, ordered by payment date
// ascending. Safe for concurrent use.
type Loader struct {
	layouts      []string
	cacheEnabled bool

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	records []payment.Record
}

// NewLoader creates a Loader with default configuration options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		layouts: []string{payment.DateLayout, time.RFC3339},
		cache:   make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads a payment-history file and returns its records sorted by
// payment date ascending. Input row order is never assumed. Missing
// required columns or unparseable values fail with ErrDataFormat.
func (l *Loader) Load(ctx context.Context, path string) ([]payment.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	metrics.RecordHistoryLoad()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenSource, path, err)
	}

	if l.cacheEnabled {
		if records, ok := l.cached(abs, info); ok {
			return records, nil
		}
	}

	records, err := l.parse(abs)
	if err != nil {
		return nil, err
	}
	payment.SortByPaymentDate(records)

	if l.cacheEnabled {
		l.store(abs, info, records)
	}
	return records, nil
}

func (l *Loader) parse(path string) ([]payment.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenSource, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: empty or unreadable header: %w", ErrDataFormat, path, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colCustomerID, colPaymentDate} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s: missing required column %q", ErrDataFormat, path, required)
		}
	}
	scheduledIdx, hasScheduled := idx[colScheduledDate]
	amountIdx, hasAmount := idx[colAmount]

	var records []payment.Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %w", ErrDataFormat, path, line, err)
		}

		rec := payment.Record{CustomerID: strings.TrimSpace(row[idx[colCustomerID]])}

		rec.PaymentDate, err = l.parseDate(row[idx[colPaymentDate]])
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: payment_date: %w", ErrDataFormat, path, line, err)
		}

		if hasScheduled {
			if raw := strings.TrimSpace(row[scheduledIdx]); raw != "" {
				scheduled, err := l.parseDate(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: %s:%d: scheduled_date: %w", ErrDataFormat, path, line, err)
				}
				rec.ScheduledDate = &scheduled
			}
		}

		if hasAmount {
			if raw := strings.TrimSpace(row[amountIdx]); raw != "" {
				amount, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: %s:%d: amount: %w", ErrDataFormat, path, line, err)
				}
				rec.Amount = &amount
			}
		}

		records = append(records, rec)
	}
	return records, nil
}

func (l *Loader) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range l.layouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (l *Loader) cached(abs string, info os.FileInfo) ([]payment.Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.cache[abs]
	if !ok || !entry.modTime.Equal(info.ModTime()) || entry.size != info.Size() {
		return nil, false
	}
	metrics.RecordHistoryCacheHit()
	// Callers mutate DelayDays downstream, so hand out a copy.
	out := make([]payment.Record, len(entry.records))
	copy(out, entry.records)
	return out, true
}

func (l *Loader) store(abs string, info os.FileInfo, records []payment.Record) {
	kept := make([]payment.Record, len(records))
	copy(kept, records)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[abs] = cacheEntry{modTime: info.ModTime(), size: info.Size(), records: kept}
}
