package ml

import (
	"math"
	"math/rand"
	"sort"
)

// TreeConfig controls CART growth.
type TreeConfig struct {
	MaxDepth        int // 0 = unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // non-constant features examined per split; 0 = all
}

// TreeNode is one node of a flattened tree. Leaves have Left == -1 and carry the class
// distribution of the training samples that reached them.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     []float64
}

// DecisionTree is a binary classification tree stored as a flat node slice; node 0 is
// the root.
type DecisionTree struct {
	Nodes      []TreeNode
	NumClasses int
}

// Distribution returns the class distribution of the leaf x falls into.
func (t *DecisionTree) Distribution(x Vector) []float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if x.At(n.Feature) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the longest root-to-leaf path length.
func (t *DecisionTree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Left < 0 {
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

type valueClass struct {
	v float64
	c int
}

type split struct {
	feature   int
	threshold float64
	impurity  float64
}

type treeBuilder struct {
	cfg         TreeConfig
	x           []Vector
	y           []int
	numClasses  int
	numFeatures int
	rng         *rand.Rand
	nodes       []TreeNode

	pairs []valueClass
	left  []float64
	right []float64

	// set when every input is a SparseVector; varies is recomputed per node
	sparse []SparseVector
	seen   []int
	lo, hi []float64
	varies []bool
}

// buildTree grows a tree over the samples listed in idx. idx may contain repeats
// (bootstrap) and is reordered in place.
func buildTree(x []Vector, y []int, numClasses, numFeatures int, idx []int, cfg TreeConfig, rng *rand.Rand) DecisionTree {
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	if cfg.MaxFeatures <= 0 || cfg.MaxFeatures > numFeatures {
		cfg.MaxFeatures = numFeatures
	}
	b := &treeBuilder{
		cfg:         cfg,
		x:           x,
		y:           y,
		numClasses:  numClasses,
		numFeatures: numFeatures,
		rng:         rng,
		pairs:       make([]valueClass, 0, len(idx)),
		left:        make([]float64, numClasses),
		right:       make([]float64, numClasses),
	}
	if sparse, ok := asSparse(x); ok {
		b.sparse = sparse
		b.seen = make([]int, numFeatures)
		b.lo = make([]float64, numFeatures)
		b.hi = make([]float64, numFeatures)
		b.varies = make([]bool, numFeatures)
	}
	b.build(idx, 0)
	return DecisionTree{Nodes: b.nodes, NumClasses: numClasses}
}

func (b *treeBuilder) build(idx []int, depth int) int {
	counts := make([]float64, b.numClasses)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	id := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Left: -1, Right: -1})

	if b.stop(idx, counts, depth) {
		b.nodes[id].Value = normalize(counts)
		return id
	}
	s, ok := b.bestSplit(idx, counts)
	if !ok {
		b.nodes[id].Value = normalize(counts)
		return id
	}

	mid := b.partition(idx, s)
	left := b.build(idx[:mid], depth+1)
	right := b.build(idx[mid:], depth+1)
	b.nodes[id].Feature = s.feature
	b.nodes[id].Threshold = s.threshold
	b.nodes[id].Left = left
	b.nodes[id].Right = right
	return id
}

func (b *treeBuilder) stop(idx []int, counts []float64, depth int) bool {
	if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
		return true
	}
	if len(idx) < b.cfg.MinSamplesSplit || len(idx) < 2*b.cfg.MinSamplesLeaf {
		return true
	}
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

// bestSplit draws features in random order and evaluates up to MaxFeatures of them
// that are not constant over idx. Constant features do not count toward the budget.
func (b *treeBuilder) bestSplit(idx []int, counts []float64) (split, bool) {
	n := float64(len(idx))
	best := split{impurity: math.Inf(1)}
	found := false
	visited := 0
	minLeaf := b.cfg.MinSamplesLeaf
	if b.sparse != nil {
		b.markVarying(idx)
	}

	for _, f := range b.rng.Perm(b.numFeatures) {
		if visited >= b.cfg.MaxFeatures {
			break
		}
		if b.varies != nil && !b.varies[f] {
			continue
		}
		pairs := b.pairs[:0]
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, i := range idx {
			v := b.x[i].At(f)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			pairs = append(pairs, valueClass{v: v, c: b.y[i]})
		}
		b.pairs = pairs
		if lo == hi {
			continue
		}
		visited++
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })

		for c := range b.left {
			b.left[c] = 0
			b.right[c] = counts[c]
		}
		for k := 0; k < len(pairs)-1; k++ {
			c := pairs[k].c
			b.left[c]++
			b.right[c]--
			if pairs[k].v == pairs[k+1].v {
				continue
			}
			nl := k + 1
			nr := len(pairs) - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			imp := (float64(nl)*gini(b.left, float64(nl)) + float64(nr)*gini(b.right, float64(nr))) / n
			if imp < best.impurity {
				thr := pairs[k].v + (pairs[k+1].v-pairs[k].v)/2
				if thr >= pairs[k+1].v {
					thr = pairs[k].v
				}
				best = split{feature: f, threshold: thr, impurity: imp}
				found = true
			}
		}
	}
	return best, found
}

// markVarying sets varies[f] when feature f takes more than one value over idx. Only
// stored components are visited; a feature missing from some sample also takes 0.
func (b *treeBuilder) markVarying(idx []int) {
	for f := range b.varies {
		b.seen[f] = 0
		b.lo[f] = math.Inf(1)
		b.hi[f] = math.Inf(-1)
	}
	for _, i := range idx {
		v := b.sparse[i]
		for k, f := range v.Indices {
			if f >= b.numFeatures {
				continue
			}
			val := v.Values[k]
			b.seen[f]++
			if val < b.lo[f] {
				b.lo[f] = val
			}
			if val > b.hi[f] {
				b.hi[f] = val
			}
		}
	}
	for f := range b.varies {
		lo, hi := b.lo[f], b.hi[f]
		if b.seen[f] < len(idx) {
			lo = math.Min(lo, 0)
			hi = math.Max(hi, 0)
		}
		b.varies[f] = lo != hi
	}
}

func asSparse(x []Vector) ([]SparseVector, bool) {
	out := make([]SparseVector, len(x))
	for i, v := range x {
		sv, ok := v.(SparseVector)
		if !ok {
			return nil, false
		}
		out[i] = sv
	}
	return out, true
}

// partition moves samples with x[f] <= threshold to the front and returns the boundary.
func (b *treeBuilder) partition(idx []int, s split) int {
	i, j := 0, len(idx)-1
	for i <= j {
		if b.x[idx[i]].At(s.feature) <= s.threshold {
			i++
			continue
		}
		idx[i], idx[j] = idx[j], idx[i]
		j--
	}
	return i
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := c / n
		sum += p * p
	}
	return 1 - sum
}

func normalize(counts []float64) []float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = c / total
	}
	return out
}
