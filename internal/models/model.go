package models

import (
	"context"
	"math"

	"mlsentiment/internal/featurize"
)

// Model is a binary classifier over sparse feature vectors. Score returns a
// margin where values above zero mean the positive class.
type Model interface {
	Fit(ctx context.Context, X []featurize.SparseVector, y []bool) error
	Score(x featurize.SparseVector) float64
	GetName() string
	GetParams() map[string]any
	Reset()
}

type BaseModel struct {
	Name   string
	Params map[string]any
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func Sigmoid(score float64) float64 {
	return 1 / (1 + math.Exp(-score))
}

func PredictLabel(m Model, x featurize.SparseVector) bool {
	return m.Score(x) > 0
}

func countClasses(y []bool) (positive, negative int) {
	for _, label := range y {
		if label {
			positive++
		} else {
			negative++
		}
	}
	return positive, negative
}
