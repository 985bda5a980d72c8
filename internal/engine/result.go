package engine

import "github.com/lendops/paydate/internal/domain/payment"

// Result is the structured prediction handed to the serialization and
// explanation layers. Field names are part of the contract: both
// consume them by key.
type Result struct {
	CustomerID           string                  `json:"customer_id"`
	PredictedPaymentDate string                  `json:"predicted_payment_date"`
	DaysUntilPayment     int                     `json:"days_until_payment"`
	LastPaymentDate      string                  `json:"last_payment_date"`
	LastDemandDate       *string                 `json:"last_demand_date"`
	NextDemandDate       *string                 `json:"next_demand_date"`
	ConfidenceScore      float64                 `json:"confidence_score"`
	PaymentHistory       []payment.HistoryEntry  `json:"payment_history"`
	AverageDelay         float64                 `json:"average_delay"`
	PaymentCount         int                     `json:"payment_count"`
}

// TrainingMetrics reports model evaluation after a training run. All
// values are non-negative and expressed in days.
type TrainingMetrics struct {
	TrainMAE  float64 `json:"train_mae"`
	TestMAE   float64 `json:"test_mae"`
	TrainRMSE float64 `json:"train_rmse"`
	TestRMSE  float64 `json:"test_rmse"`
}
