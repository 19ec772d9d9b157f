package models

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlsentiment/internal/featurize"
)

// separable gives positives feature 0 and negatives feature 1, plus a shared
// feature 2 that carries no signal.
func separable(n int) ([]featurize.SparseVector, []bool) {
	X := make([]featurize.SparseVector, 0, 2*n)
	y := make([]bool, 0, 2*n)
	for i := 0; i < n; i++ {
		X = append(X, featurize.NewSparseVector(map[int]float64{0: 1, 2: 0.5}))
		y = append(y, true)
		X = append(X, featurize.NewSparseVector(map[int]float64{1: 1, 2: 0.5}))
		y = append(y, false)
	}
	return X, y
}

func noisy(n, features int, seed int64) ([]featurize.SparseVector, []bool) {
	rng := rand.New(rand.NewSource(seed))
	X := make([]featurize.SparseVector, n)
	y := make([]bool, n)
	for i := range X {
		counts := make(map[int]float64)
		for k := 0; k < 3; k++ {
			counts[rng.Intn(features)] += rng.Float64()
		}
		X[i] = featurize.NewSparseVector(counts)
		y[i] = counts[0]+counts[1] > counts[2]+counts[3] || rng.Float64() < 0.1
	}
	return X, y
}

func TestFastTreeSeparable(t *testing.T) {
	X, y := separable(10)

	ft := NewFastTree(5, 5, 2, 0.2)
	require.NoError(t, ft.Fit(context.Background(), X, y))
	require.Len(t, ft.Trees, 5)

	for i, x := range X {
		assert.Equal(t, y[i], PredictLabel(ft, x), "example %d", i)
	}

	pos := ft.Score(X[0])
	neg := ft.Score(X[1])
	assert.Greater(t, pos, 0.0)
	assert.Less(t, neg, 0.0)
	assert.Greater(t, Sigmoid(pos), 0.5)
}

func TestFastTreeRespectsLeafLimits(t *testing.T) {
	X, y := noisy(80, 12, 7)

	ft := NewFastTree(5, 5, 2, 0.2)
	require.NoError(t, ft.Fit(context.Background(), X, y))

	for i, tree := range ft.Trees {
		assert.LessOrEqual(t, tree.NumLeaves(), 5, "tree %d", i)
		for _, node := range tree.Nodes {
			if node.IsLeaf {
				assert.GreaterOrEqual(t, node.Samples, 2, "tree %d", i)
			}
		}
	}
}

func TestFastTreeParallelMatchesSerial(t *testing.T) {
	X, y := noisy(120, 40, 11)

	parallel := NewFastTree(5, 5, 2, 0.2)
	parallel.MaxWorkers = 4
	require.NoError(t, parallel.Fit(context.Background(), X, y))

	serial := NewFastTree(5, 5, 2, 0.2)
	serial.Parallel = false
	require.NoError(t, serial.Fit(context.Background(), X, y))

	assert.Equal(t, serial.Trees, parallel.Trees)
}

func TestFastTreeFitErrors(t *testing.T) {
	ft := NewFastTree(5, 5, 2, 0.2)

	assert.Error(t, ft.Fit(context.Background(), nil, nil))
	assert.Error(t, ft.Fit(context.Background(), make([]featurize.SparseVector, 2), []bool{true}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	X, y := separable(2)
	assert.ErrorIs(t, ft.Fit(ctx, X, y), context.Canceled)
}

func TestRegressionTreeOutput(t *testing.T) {
	tree := RegressionTree{Nodes: []TreeNode{
		{Feature: 4, Threshold: 0.5, Left: 1, Right: 2},
		{IsLeaf: true, Value: -1},
		{IsLeaf: true, Value: 1},
	}}

	assert.Equal(t, 1.0, tree.Output(featurize.NewSparseVector(map[int]float64{4: 0.9})))
	assert.Equal(t, -1.0, tree.Output(featurize.NewSparseVector(map[int]float64{4: 0.2})))
	assert.Equal(t, -1.0, tree.Output(featurize.SparseVector{}))
	assert.Equal(t, 2, tree.NumLeaves())

	var empty RegressionTree
	assert.Equal(t, 0.0, empty.Output(featurize.SparseVector{}))
}

func TestNaiveBayes(t *testing.T) {
	X, y := separable(5)

	nb := NewNaiveBayes(1.0)
	require.NoError(t, nb.Fit(context.Background(), X, y))
	assert.Equal(t, 3, nb.Dimension)

	assert.True(t, PredictLabel(nb, X[0]))
	assert.False(t, PredictLabel(nb, X[1]))
	assert.InDelta(t, 0.0, nb.Score(featurize.SparseVector{}), 1e-12)

	nb.Reset()
	assert.Equal(t, 0.0, nb.Score(X[0]))
}

func TestNaiveBayesSingleClass(t *testing.T) {
	X := []featurize.SparseVector{featurize.NewSparseVector(map[int]float64{0: 1})}
	err := NewNaiveBayes(1.0).Fit(context.Background(), X, []bool{true})
	assert.Error(t, err)
}

func TestCreateModel(t *testing.T) {
	m, err := CreateModel(ModelConfig{})
	require.NoError(t, err)

	ft, ok := m.(*FastTree)
	require.True(t, ok)
	assert.Equal(t, 5, ft.NumLeaves)
	assert.Equal(t, 5, ft.NumTrees)
	assert.Equal(t, 2, ft.MinDocumentsInLeaf)
	assert.Equal(t, "FastTreeBinaryClassifier", ft.GetName())

	m, err = CreateModel(DefaultConfig(AlgorithmBayes))
	require.NoError(t, err)
	assert.Equal(t, "NaiveBayes", m.GetName())

	_, err = CreateModel(ModelConfig{Algorithm: "svm"})
	assert.Error(t, err)
}

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.Greater(t, Sigmoid(3), 0.95)
	assert.Less(t, Sigmoid(-3), 0.05)
}

func TestFastTreeTooFewDocumentsToSplit(t *testing.T) {
	X, y := separable(1)

	ft := NewFastTree(5, 5, 2, 0.2)
	require.NoError(t, ft.Fit(context.Background(), X, y))

	for _, tree := range ft.Trees {
		assert.Equal(t, 1, tree.NumLeaves())
	}
	assert.Equal(t, ft.Score(X[0]), ft.Score(X[1]))
}
