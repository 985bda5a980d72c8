package engine

import "github.com/lendops/paydate/internal/domain/feature"

// Confidence heuristic constants. The score is a hand-tuned proxy for
// prediction reliability; it is NOT a statistical confidence interval
// and must not be presented as one.
const (
	confidenceBase     = 0.70
	confidenceFloor    = 0.50
	confidenceCeiling  = 0.95
	manyPaymentsBonus  = 0.10 // more than manyPayments records
	somePaymentsBonus  = 0.05 // more than somePayments records
	manyPayments       = 10
	somePayments       = 5
	volatilityPenalty  = 0.10 // delay std above volatileStdDays
	stabilityBonus     = 0.10 // delay std below stableStdDays
	volatileStdDays    = 10.0
	stableStdDays      = 3.0
)

// confidence scores a feature vector: more history raises it, volatile
// delay behavior lowers it, and the result clamps to
// [confidenceFloor, confidenceCeiling].
func confidence(v *feature.Vector) float64 {
	score := confidenceBase

	totalPayments, _ := v.Get("total_payments")
	if totalPayments > manyPayments {
		score += manyPaymentsBonus
	} else if totalPayments > somePayments {
		score += somePaymentsBonus
	}

	stdDelay, _ := v.Get("std_delay")
	if stdDelay > volatileStdDays {
		score -= volatilityPenalty
	} else if stdDelay < stableStdDays {
		score += stabilityBonus
	}

	if score < confidenceFloor {
		return confidenceFloor
	}
	if score > confidenceCeiling {
		return confidenceCeiling
	}
	return score
}
