package regress

import "fmt"

// Default GBRT hyperparameters. They are tunable, not protocol-critical.
const (
	defaultTreeCount    = 100
	defaultMaxDepth     = 6
	defaultLearningRate = 0.1
	minSplitSamples     = 2
)

// GBRTOption applies a configuration option to the GBRT regressor.
type GBRTOption func(*GBRT)

// WithTreeCount sets the number of boosting rounds.
func WithTreeCount(n int) GBRTOption {
	return func(g *GBRT) {
		if n > 0 {
			g.TreeCount = n
		}
	}
}

// WithMaxDepth sets the per-tree depth limit.
func WithMaxDepth(d int) GBRTOption {
	return func(g *GBRT) {
		if d > 0 {
			g.MaxDepth = d
		}
	}
}

// WithLearningRate sets the shrinkage applied to every tree.
func WithLearningRate(lr float64) GBRTOption {
	return func(g *GBRT) {
		if lr > 0 {
			g.LearningRate = lr
		}
	}
}

// GBRT is a gradient-boosted ensemble of regression trees under squared
// loss: each round fits a depth-limited tree to the current residuals
// and contributes LearningRate times its leaf values. The fit is fully
// deterministic: no row or feature subsampling.
//
// Fields are exported for JSON persistence only.
type GBRT struct {
	TreeCount    int         `json:"tree_count"`
	MaxDepth     int         `json:"max_depth"`
	LearningRate float64     `json:"learning_rate"`
	Base         float64     `json:"base"`
	Trees        []*treeNode `json:"trees"`
}

// NewGBRT creates a GBRT regressor with default hyperparameters.
func NewGBRT(opts ...GBRTOption) *GBRT {
	g := &GBRT{
		TreeCount:    defaultTreeCount,
		MaxDepth:     defaultMaxDepth,
		LearningRate: defaultLearningRate,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// treeNode is one node of a binary regression tree. Leaves carry the
// mean residual of the samples routed to them.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Value     float64   `json:"value,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// Fit trains the ensemble. All rows must share the same width.
func (g *GBRT) Fit(rows [][]float64, targets []float64) error {
	if len(rows) == 0 || len(rows) != len(targets) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrNoTrainingData, len(rows), len(targets))
	}
	width := len(rows[0])
	for _, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: ragged rows", ErrNoTrainingData)
		}
	}

	g.Base = meanOf(targets)
	g.Trees = g.Trees[:0]

	residuals := make([]float64, len(targets))
	for i, y := range targets {
		residuals[i] = y - g.Base
	}

	indices := make([]int, len(rows))
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < g.TreeCount; round++ {
		tree := buildTree(rows, residuals, indices, g.MaxDepth)
		g.Trees = append(g.Trees, tree)
		for i, row := range rows {
			residuals[i] -= g.LearningRate * tree.predict(row)
		}
	}
	return nil
}

// Predict returns Base plus the shrunken sum of all tree outputs. An
// unfitted model predicts 0.
func (g *GBRT) Predict(row []float64) float64 {
	out := g.Base
	for _, tree := range g.Trees {
		out += g.LearningRate * tree.predict(row)
	}
	return out
}

// buildTree grows one regression tree greedily, splitting on the
// feature/threshold pair with the largest squared-error reduction.
func buildTree(rows [][]float64, residuals []float64, indices []int, depth int) *treeNode {
	if depth == 0 || len(indices) < minSplitSamples {
		return &treeNode{Leaf: true, Value: meanAt(residuals, indices)}
	}

	feature, threshold, ok := bestSplit(rows, residuals, indices)
	if !ok {
		return &treeNode{Leaf: true, Value: meanAt(residuals, indices)}
	}

	var left, right []int
	for _, i := range indices {
		if rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Value: meanAt(residuals, indices)}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(rows, residuals, left, depth-1),
		Right:     buildTree(rows, residuals, right, depth-1),
	}
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two children. Thresholds are midpoints between
// consecutive distinct values, so ties route deterministically.
func bestSplit(rows [][]float64, residuals []float64, indices []int) (feature int, threshold float64, ok bool) {
	parentSSE := sseAt(residuals, indices)
	bestGain := 0.0

	width := len(rows[indices[0]])
	sorted := make([]int, len(indices))

	for f := 0; f < width; f++ {
		copy(sorted, indices)
		sortByFeature(rows, sorted, f)

		// Running sums from the left let each candidate split be
		// evaluated in constant time.
		var leftSum, leftSq float64
		totalSum, totalSq := sumsAt(residuals, indices)
		n := float64(len(sorted))

		for i := 0; i < len(sorted)-1; i++ {
			r := residuals[sorted[i]]
			leftSum += r
			leftSq += r * r

			cur, next := rows[sorted[i]][f], rows[sorted[i+1]][f]
			if cur == next {
				continue
			}

			nl := float64(i + 1)
			nr := n - nl
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			childSSE := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)

			if gain := parentSSE - childSSE; gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func sortByFeature(rows [][]float64, indices []int, f int) {
	// Insertion sort keeps the comparison stable and avoids closure
	// allocation in the hot fitting loop; index sets shrink quickly
	// with depth.
	for i := 1; i < len(indices); i++ {
		j := i
		for j > 0 && rows[indices[j-1]][f] > rows[indices[j]][f] {
			indices[j-1], indices[j] = indices[j], indices[j-1]
			j--
		}
	}
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func meanAt(vals []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += vals[i]
	}
	return sum / float64(len(indices))
}

func sumsAt(vals []float64, indices []int) (sum, sq float64) {
	for _, i := range indices {
		sum += vals[i]
		sq += vals[i] * vals[i]
	}
	return sum, sq
}

func sseAt(vals []float64, indices []int) float64 {
	sum, sq := sumsAt(vals, indices)
	n := float64(len(indices))
	if n == 0 {
		return 0
	}
	return sq - sum*sum/n
}
