package regression

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TreeParams bounds the growth of a regression tree
type TreeParams struct {
	// MaxDepth of 0 means unlimited
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures of 0 means every feature is considered at each split
	MaxFeatures int
}

// DefaultTreeParams returns fully grown trees
func DefaultTreeParams() TreeParams {
	return TreeParams{MinSamplesSplit: 2, MinSamplesLeaf: 1}
}

// Node is one node of a fitted tree. Leaves have Feature == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Samples   int
}

// RegressionTree is a CART tree minimising squared error
type RegressionTree struct {
	Params    TreeParams
	NFeatures int
	Nodes     []Node
	// Importances holds the total squared-error decrease per feature
	Importances []float64
}

// NewRegressionTree creates an unfitted tree
func NewRegressionTree(params TreeParams) *RegressionTree {
	if params.MinSamplesSplit < 2 {
		params.MinSamplesSplit = 2
	}
	if params.MinSamplesLeaf < 1 {
		params.MinSamplesLeaf = 1
	}
	return &RegressionTree{Params: params}
}

// Fit grows the tree on the rows of X listed in sample. Repeated indices
// act as repeated observations. rng picks feature subsets when
// MaxFeatures is set and may be nil otherwise.
func (t *RegressionTree) Fit(X [][]float64, y []float64, sample []int, rng *rand.Rand) error {
	width, err := matrixWidth(X)
	if err != nil {
		return err
	}
	if len(y) != len(X) {
		return fmt.Errorf("X has %d rows but y has %d", len(X), len(y))
	}
	if len(sample) == 0 {
		return fmt.Errorf("empty sample")
	}
	if t.Params.MaxFeatures > 0 && t.Params.MaxFeatures < width && rng == nil {
		return fmt.Errorf("feature subsampling requires a random source")
	}

	t.NFeatures = width
	t.Nodes = t.Nodes[:0]
	t.Importances = make([]float64, width)

	b := &treeBuilder{tree: t, X: X, y: y, rng: rng}
	idx := append([]int(nil), sample...)
	b.grow(idx, 0)
	return nil
}

// PredictRow returns the leaf value reached by x
func (t *RegressionTree) PredictRow(x []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// Depth returns the number of edges on the longest root-to-leaf path
func (t *RegressionTree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return 0
		}
		l, r := walk(n.Left), walk(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(0)
}

// NormalizedImportances returns Importances scaled to sum to 1
func (t *RegressionTree) NormalizedImportances() []float64 {
	out := append([]float64(nil), t.Importances...)
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}

type treeBuilder struct {
	tree *RegressionTree
	X    [][]float64
	y    []float64
	rng  *rand.Rand
}

type splitCandidate struct {
	feature   int
	threshold float64
	position  int
	childSSE  float64
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	targets := make([]float64, len(idx))
	for i, r := range idx {
		targets[i] = b.y[r]
	}
	nodeSSE := sse(targets)

	nodeID := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{
		Feature: -1,
		Value:   stat.Mean(targets, nil),
		Samples: len(idx),
	})

	p := b.tree.Params
	if len(idx) < p.MinSamplesSplit || len(idx) < 2*p.MinSamplesLeaf ||
		(p.MaxDepth > 0 && depth >= p.MaxDepth) || nodeSSE <= 0 {
		return nodeID
	}

	best, ok := b.bestSplit(idx)
	if !ok {
		return nodeID
	}

	sort.SliceStable(idx, func(i, j int) bool {
		return b.X[idx[i]][best.feature] < b.X[idx[j]][best.feature]
	})
	left := append([]int(nil), idx[:best.position]...)
	right := append([]int(nil), idx[best.position:]...)

	b.tree.Importances[best.feature] += math.Max(nodeSSE-best.childSSE, 0)

	leftID := b.grow(left, depth+1)
	rightID := b.grow(right, depth+1)

	node := &b.tree.Nodes[nodeID]
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = leftID
	node.Right = rightID
	return nodeID
}

// bestSplit scans every candidate feature in sorted order and keeps the
// split with the lowest total child squared error
func (b *treeBuilder) bestSplit(idx []int) (splitCandidate, bool) {
	p := b.tree.Params
	features := b.candidateFeatures()

	n := len(idx)
	order := make([]int, n)
	best := splitCandidate{childSSE: math.Inf(1)}
	found := false

	for _, f := range features {
		copy(order, idx)
		sort.SliceStable(order, func(i, j int) bool {
			return b.X[order[i]][f] < b.X[order[j]][f]
		})

		var totalSum, totalSq float64
		for _, r := range order {
			totalSum += b.y[r]
			totalSq += b.y[r] * b.y[r]
		}

		var leftSum, leftSq float64
		for i := 0; i < n-1; i++ {
			yi := b.y[order[i]]
			leftSum += yi
			leftSq += yi * yi

			nl := i + 1
			nr := n - nl
			if nl < p.MinSamplesLeaf || nr < p.MinSamplesLeaf {
				continue
			}
			lo, hi := b.X[order[i]][f], b.X[order[i+1]][f]
			if !(lo < hi) {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			child := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if child < best.childSSE {
				threshold := lo/2 + hi/2
				if threshold >= hi || math.IsInf(threshold, 0) {
					threshold = lo
				}
				best = splitCandidate{feature: f, threshold: threshold, position: nl, childSSE: math.Max(child, 0)}
				found = true
			}
		}
	}

	return best, found
}

func (b *treeBuilder) candidateFeatures() []int {
	width := b.tree.NFeatures
	k := b.tree.Params.MaxFeatures
	if k <= 0 || k >= width {
		all := make([]int, width)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(width)[:k]
}

// sse returns the sum of squared deviations from the mean
func sse(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	total := 0.0
	for _, v := range values {
		d := v - mean
		total += d * d
	}
	return total
}
