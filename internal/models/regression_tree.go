package models

import (
	"sort"
	"sync"

	"mlsentiment/internal/featurize"
)

const minSplitGain = 1e-12

// TreeNode is stored in a flat slice; Left and Right index into it.
type TreeNode struct {
	IsLeaf    bool
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Samples   int
	Gain      float64
}

type RegressionTree struct {
	Nodes []TreeNode
}

func (rt *RegressionTree) Output(x featurize.SparseVector) float64 {
	if len(rt.Nodes) == 0 {
		return 0
	}

	idx := 0
	for {
		node := rt.Nodes[idx]
		if node.IsLeaf {
			return node.Value
		}
		if x.Get(node.Feature) <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func (rt *RegressionTree) NumLeaves() int {
	leaves := 0
	for _, node := range rt.Nodes {
		if node.IsLeaf {
			leaves++
		}
	}
	return leaves
}

type splitCandidate struct {
	feature   int
	threshold float64
	gain      float64
	valid     bool
}

func (s splitCandidate) better(other splitCandidate) bool {
	if !s.valid {
		return false
	}
	if !other.valid {
		return true
	}
	if s.gain != other.gain {
		return s.gain > other.gain
	}
	return s.feature < other.feature
}

type featureEntry struct {
	value    float64
	gradient float64
}

type openLeaf struct {
	node  int
	docs  []int
	split splitCandidate
}

// treeLearner grows one regression tree leaf-wise on gradients: the leaf
// with the largest variance gain is split until numLeaves is reached.
type treeLearner struct {
	numLeaves  int
	minDocs    int
	parallel   bool
	maxWorkers int
	X          []featurize.SparseVector
}

func (tl *treeLearner) grow(gradients, hessians []float64, docs []int, leafValue func(sumG, sumH float64) float64) RegressionTree {
	tree := RegressionTree{Nodes: []TreeNode{{IsLeaf: true, Samples: len(docs)}}}
	leaves := []*openLeaf{{node: 0, docs: docs, split: tl.findBestSplit(docs, gradients)}}

	for len(leaves) < tl.numLeaves {
		best := -1
		for i, leaf := range leaves {
			if best < 0 || leaf.split.better(leaves[best].split) {
				if leaf.split.valid {
					best = i
				}
			}
		}
		if best < 0 {
			break
		}

		leaf := leaves[best]
		leftDocs, rightDocs := tl.partition(leaf.docs, leaf.split)

		leftIdx := len(tree.Nodes)
		rightIdx := leftIdx + 1
		tree.Nodes = append(tree.Nodes,
			TreeNode{IsLeaf: true, Samples: len(leftDocs)},
			TreeNode{IsLeaf: true, Samples: len(rightDocs)},
		)

		parent := &tree.Nodes[leaf.node]
		parent.IsLeaf = false
		parent.Feature = leaf.split.feature
		parent.Threshold = leaf.split.threshold
		parent.Gain = leaf.split.gain
		parent.Left = leftIdx
		parent.Right = rightIdx

		leaves[best] = &openLeaf{node: leftIdx, docs: leftDocs, split: tl.findBestSplit(leftDocs, gradients)}
		leaves = append(leaves, &openLeaf{node: rightIdx, docs: rightDocs, split: tl.findBestSplit(rightDocs, gradients)})
	}

	for _, leaf := range leaves {
		sumG, sumH := 0.0, 0.0
		for _, doc := range leaf.docs {
			sumG += gradients[doc]
			sumH += hessians[doc]
		}
		tree.Nodes[leaf.node].Value = leafValue(sumG, sumH)
	}

	return tree
}

func (tl *treeLearner) partition(docs []int, split splitCandidate) ([]int, []int) {
	var left, right []int
	for _, doc := range docs {
		if tl.X[doc].Get(split.feature) <= split.threshold {
			left = append(left, doc)
		} else {
			right = append(right, doc)
		}
	}
	return left, right
}

func (tl *treeLearner) findBestSplit(docs []int, gradients []float64) splitCandidate {
	n := len(docs)
	if n < 2*tl.minDocs {
		return splitCandidate{}
	}

	total := 0.0
	columns := make(map[int][]featureEntry)
	for _, doc := range docs {
		g := gradients[doc]
		total += g
		x := tl.X[doc]
		for k, feature := range x.Indices {
			columns[feature] = append(columns[feature], featureEntry{value: x.Values[k], gradient: g})
		}
	}

	features := make([]int, 0, len(columns))
	for feature := range columns {
		features = append(features, feature)
	}
	sort.Ints(features)

	search := func(chunk []int) splitCandidate {
		var best splitCandidate
		for _, feature := range chunk {
			cand := tl.bestSplitForFeature(feature, columns[feature], n, total)
			if cand.better(best) {
				best = cand
			}
		}
		return best
	}

	workers := tl.maxWorkers
	if !tl.parallel || workers <= 1 || len(features) < 2*workers {
		return search(features)
	}

	results := make([]splitCandidate, workers)
	chunkSize := (len(features) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= len(features) {
			break
		}
		end := start + chunkSize
		if end > len(features) {
			end = len(features)
		}

		wg.Add(1)
		go func(w int, chunk []int) {
			defer wg.Done()
			results[w] = search(chunk)
		}(w, features[start:end])
	}
	wg.Wait()

	var best splitCandidate
	for _, cand := range results {
		if cand.better(best) {
			best = cand
		}
	}
	return best
}

// bestSplitForFeature scans thresholds of one feature. Documents without the
// feature have value zero and always fall on the left.
func (tl *treeLearner) bestSplitForFeature(feature int, entries []featureEntry, n int, total float64) splitCandidate {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].value < entries[j].value
	})

	entrySum := 0.0
	for _, e := range entries {
		entrySum += e.gradient
	}

	nLeft := n - len(entries)
	gLeft := total - entrySum
	parent := total * total / float64(n)

	var best splitCandidate
	consider := func(threshold float64) {
		nRight := n - nLeft
		if nLeft < tl.minDocs || nRight < tl.minDocs {
			return
		}
		gRight := total - gLeft
		gain := gLeft*gLeft/float64(nLeft) + gRight*gRight/float64(nRight) - parent
		if gain > minSplitGain && (!best.valid || gain > best.gain) {
			best = splitCandidate{feature: feature, threshold: threshold, gain: gain, valid: true}
		}
	}

	if nLeft > 0 && len(entries) > 0 {
		consider(entries[0].value / 2)
	}

	for k := 0; k < len(entries)-1; k++ {
		nLeft++
		gLeft += entries[k].gradient
		if entries[k].value == entries[k+1].value {
			continue
		}
		consider((entries[k].value + entries[k+1].value) / 2)
	}

	return best
}
