// Command paydate-cli trains, predicts, and exports from the command
// line without running the HTTP server. Paths and hyperparameters come
// from the same configuration layers as the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lendops/paydate/internal/adapters/history"
	"github.com/lendops/paydate/internal/adapters/llm"
	"github.com/lendops/paydate/internal/config"
	"github.com/lendops/paydate/internal/domain/feature"
	"github.com/lendops/paydate/internal/domain/payment"
	"github.com/lendops/paydate/internal/domain/regress"
	"github.com/lendops/paydate/internal/engine"
	"github.com/lendops/paydate/internal/export"
	"github.com/lendops/paydate/pkg/logger"
)

func main() {
	mode := flag.String("mode", "", "train | predict | batch | export")
	customer := flag.String("customer", "", "customer id (predict mode)")
	customersArg := flag.String("customers", "", "comma-separated customer ids (batch mode; empty means all)")
	data := flag.String("data", "", "history CSV path (overrides configuration)")
	out := flag.String("out", "", "output CSV path (export mode; default timestamped)")
	explain := flag.Bool("explain", false, "attach an LLM explanation (predict mode; needs an API key)")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString("warn") // keep CLI output parseable

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fail("load config", err)
	}
	dataPath := cfg.DataPath
	if *data != "" {
		dataPath = *data
	}

	loader := history.NewLoader(history.WithCache(cfg.HistoryCache))
	eng := engine.New(
		engine.WithLoader(loader),
		engine.WithEngineer(feature.New(feature.WithWindows(cfg.FeatureWindows))),
		engine.WithModelPath(cfg.ModelPath),
		engine.WithMinHistoryRecords(cfg.MinHistoryRecords),
		engine.WithBackend(cfg.RegressorBackend),
		engine.WithGBRTOptions(
			regress.WithTreeCount(cfg.TreeCount),
			regress.WithMaxDepth(cfg.MaxTreeDepth),
			regress.WithLearningRate(cfg.LearningRate),
		),
		engine.WithTestFraction(cfg.TestFraction),
		engine.WithSplitSeed(cfg.SplitSeed),
	)

	switch *mode {
	case "train":
		metrics, err := eng.Train(ctx, dataPath)
		if err != nil {
			fail("train", err)
		}
		printJSON(metrics)

	case "predict":
		if *customer == "" {
			fail("predict", fmt.Errorf("-customer is required"))
		}
		result, err := eng.PredictNextPaymentDate(ctx, *customer, dataPath)
		if err != nil {
			fail("predict", err)
		}
		printJSON(result)
		if *explain {
			explainer := llm.NewExplainer(cfg.OpenAIAPIKey, llm.WithModel(cfg.OpenAIModel))
			if !explainer.Enabled() {
				fail("explain", fmt.Errorf("no OpenAI API key configured"))
			}
			explanation, err := explainer.ExplainPrediction(ctx, result)
			if err != nil {
				fail("explain", err)
			}
			fmt.Println(explanation)
		}

	case "batch":
		ids := splitIDs(*customersArg)
		if len(ids) == 0 {
			records, err := loader.Load(ctx, dataPath)
			if err != nil {
				fail("batch", err)
			}
			ids = payment.CustomerIDs(records)
		}
		printJSON(eng.PredictBatch(ctx, ids, dataPath))

	case "export":
		path := *out
		if path == "" {
			path = fmt.Sprintf("payment_predictions_%s.csv", time.Now().Format("20060102_150405"))
		}
		exporter := export.New(eng, loader, export.WithProgress(true))
		summary, err := exporter.Run(ctx, dataPath, path)
		if err != nil {
			fail("export", err)
		}
		printJSON(summary)

	default:
		fmt.Fprintln(os.Stderr, "usage: paydate-cli -mode train|predict|batch|export [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}
}

func splitIDs(arg string) []string {
	var ids []string
	for _, id := range strings.Split(arg, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(op string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
	os.Exit(1)
}
