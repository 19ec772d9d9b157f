package models

import (
	"context"
	"fmt"
	"math"

	"mlsentiment/internal/featurize"
)

const (
	maxLeafOutput = 10.0
	hessianFloor  = 1e-9
)

// FastTree is a gradient-boosted ensemble of regression trees trained on the
// logistic loss. Score is the summed tree output in log-odds space.
type FastTree struct {
	BaseModel
	NumLeaves          int
	NumTrees           int
	MinDocumentsInLeaf int
	LearningRate       float64
	Parallel           bool
	MaxWorkers         int
	Trees              []RegressionTree
}

func NewFastTree(numLeaves, numTrees, minDocumentsInLeaf int, learningRate float64) *FastTree {
	if numLeaves < 2 {
		numLeaves = 2
	}
	if numTrees <= 0 {
		numTrees = 100
	}
	if minDocumentsInLeaf <= 0 {
		minDocumentsInLeaf = 1
	}
	if learningRate <= 0 {
		learningRate = 0.2
	}

	return &FastTree{
		NumLeaves:          numLeaves,
		NumTrees:           numTrees,
		MinDocumentsInLeaf: minDocumentsInLeaf,
		LearningRate:       learningRate,
		Parallel:           true,
		MaxWorkers:         4,
		BaseModel: BaseModel{
			Name: "FastTreeBinaryClassifier",
			Params: map[string]any{
				"num_leaves":            numLeaves,
				"num_trees":             numTrees,
				"min_documents_in_leaf": minDocumentsInLeaf,
				"learning_rate":         learningRate,
			},
		},
	}
}

func (ft *FastTree) Fit(ctx context.Context, X []featurize.SparseVector, y []bool) error {
	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}
	if len(X) == 0 {
		return fmt.Errorf("cannot fit on an empty dataset")
	}

	ft.Trees = make([]RegressionTree, 0, ft.NumTrees)

	learner := &treeLearner{
		numLeaves:  ft.NumLeaves,
		minDocs:    ft.MinDocumentsInLeaf,
		parallel:   ft.Parallel,
		maxWorkers: ft.MaxWorkers,
		X:          X,
	}

	n := len(X)
	scores := make([]float64, n)
	gradients := make([]float64, n)
	hessians := make([]float64, n)
	docs := make([]int, n)
	for i := range docs {
		docs[i] = i
	}

	leafValue := func(sumG, sumH float64) float64 {
		v := sumG / math.Max(sumH, hessianFloor)
		v = math.Max(-maxLeafOutput, math.Min(maxLeafOutput, v))
		return v * ft.LearningRate
	}

	for t := 0; t < ft.NumTrees; t++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("training interrupted after %d trees: %w", t, err)
		}

		for i := range X {
			p := Sigmoid(scores[i])
			target := 0.0
			if y[i] {
				target = 1
			}
			gradients[i] = target - p
			hessians[i] = p * (1 - p)
		}

		tree := learner.grow(gradients, hessians, docs, leafValue)
		ft.Trees = append(ft.Trees, tree)

		for i, x := range X {
			scores[i] += tree.Output(x)
		}
	}

	return nil
}

func (ft *FastTree) Score(x featurize.SparseVector) float64 {
	score := 0.0
	for i := range ft.Trees {
		score += ft.Trees[i].Output(x)
	}
	return score
}

func (ft *FastTree) Reset() {
	ft.Trees = nil
}
