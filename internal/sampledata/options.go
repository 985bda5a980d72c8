package sampledata

import "time"

// Default generation parameters.
const (
	defaultCustomers   = 50
	defaultPayments    = 12
	defaultHistoryDays = 180
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithCustomers sets how many customers to generate.
func WithCustomers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.customers = n
		}
	}
}

// WithPaymentsPerCustomer sets the target payment count per customer.
func WithPaymentsPerCustomer(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.payments = n
		}
	}
}

// WithSeed fixes the random source for reproducible datasets.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}
