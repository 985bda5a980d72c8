// Command gen-data fabricates a sample payment-history CSV for demos
// and local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lendops/paydate/internal/sampledata"
	"github.com/lendops/paydate/pkg/logger"
)

func main() {
	customers := flag.Int("customers", 50, "number of customers to generate")
	payments := flag.Int("payments", 12, "target payments per customer")
	output := flag.String("output", "data/payment_history.csv", "output CSV path")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed; fix for reproducible data")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	gen := sampledata.New(
		sampledata.WithCustomers(*customers),
		sampledata.WithPaymentsPerCustomer(*payments),
		sampledata.WithSeed(*seed),
	)
	written, err := gen.WriteCSV(context.Background(), *output)
	if err != nil {
		os.Stderr.WriteString("generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	fmt.Printf("wrote %d payment records for %d customers to %s\n", written, *customers, *output)
}
