// Package llm turns numeric prediction results into short plain-language
// explanations through a chat-completion provider. The whole package is
// optional: without an API key every call reports ErrDisabled and
// callers fall back to serving the bare numbers.
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lendops/paydate/internal/engine"
	"github.com/lendops/paydate/pkg/logger"
)

// ChatClient is the slice of the OpenAI client the explainer needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Explainer generates explanations for payment-date predictions.
type Explainer struct {
	client    ChatClient
	model     string
	maxTokens int
	log       logger.Logger
}

// NewExplainer creates an Explainer. An empty apiKey yields a disabled
// instance, not an error, so callers can construct unconditionally.
func NewExplainer(apiKey string, opts ...Option) *Explainer {
	e := &Explainer{
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	if apiKey != "" {
		e.client = openai.NewClient(apiKey)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enabled reports whether a chat client is configured.
func (e *Explainer) Enabled() bool {
	return e.client != nil
}

func (e *Explainer) logger() logger.Logger {
	if e.log != nil {
		return e.log
	}
	return logger.Get()
}

// ExplainPrediction produces a short customer-facing explanation of one
// prediction result.
func (e *Explainer) ExplainPrediction(ctx context.Context, result *engine.Result) (string, error) {
	if !e.Enabled() {
		return "", ErrDisabled
	}
	return e.complete(ctx,
		"You are a payments analyst. Explain installment payment predictions in two or three plain sentences for a collections officer. No markdown.",
		predictionPrompt(result),
	)
}

// GenerateInsights summarizes payment behavior across a batch of
// predictions, highlighting customers likely to pay late.
func (e *Explainer) GenerateInsights(ctx context.Context, results []*engine.Result) (string, error) {
	if !e.Enabled() {
		return "", ErrDisabled
	}
	return e.complete(ctx,
		"You are a payments analyst. Summarize portfolio-level payment behavior in a short paragraph, calling out customers with low confidence or high average delay. No markdown.",
		insightsPrompt(results),
	)
}

func (e *Explainer) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Temperature: defaultTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		e.logger().Warn(ctx, "chat completion failed", logger.Error(err))
		return "", fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func predictionPrompt(r *engine.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer %s has made %d payments with an average delay of %.1f days.\n",
		r.CustomerID, r.PaymentCount, r.AverageDelay)
	fmt.Fprintf(&b, "Last payment: %s. Predicted next payment: %s (%d days out, confidence %.0f%%).\n",
		r.LastPaymentDate, r.PredictedPaymentDate, r.DaysUntilPayment, r.ConfidenceScore*100)
	if r.NextDemandDate != nil {
		fmt.Fprintf(&b, "The next contractual demand date is %s.\n", *r.NextDemandDate)
	}
	if len(r.PaymentHistory) > 0 {
		b.WriteString("Recent payments (date, delay in days):\n")
		for _, h := range r.PaymentHistory {
			fmt.Fprintf(&b, "- %s: %.0f\n", h.PaymentDate, h.DelayDays)
		}
	}
	b.WriteString("Explain when and why this customer is expected to pay.")
	return b.String()
}

func insightsPrompt(results []*engine.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Predictions for %d customers (id, predicted date, avg delay, confidence):\n", len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "- %s: %s, %.1f days, %.0f%%\n",
			r.CustomerID, r.PredictedPaymentDate, r.AverageDelay, r.ConfidenceScore*100)
	}
	b.WriteString("Summarize the portfolio's payment behavior and flag risky customers.")
	return b.String()
}
