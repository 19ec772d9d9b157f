package models

import (
	"context"
	"fmt"
	"math"

	"mlsentiment/internal/featurize"
)

// NaiveBayes is a multinomial naive Bayes classifier over non-negative
// feature weights with additive smoothing.
type NaiveBayes struct {
	BaseModel
	Alpha           float64
	Dimension       int
	ClassLogPriors  [2]float64
	FeatureLogProbs [2][]float64
}

func NewNaiveBayes(alpha float64) *NaiveBayes {
	if alpha <= 0 {
		alpha = 1.0
	}
	return &NaiveBayes{
		Alpha: alpha,
		BaseModel: BaseModel{
			Name: "NaiveBayes",
			Params: map[string]any{
				"alpha": alpha,
			},
		},
	}
}

func (nb *NaiveBayes) Fit(ctx context.Context, X []featurize.SparseVector, y []bool) error {
	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	positive, negative := countClasses(y)
	if positive == 0 || negative == 0 {
		return fmt.Errorf("naive bayes needs both classes, got %d positive and %d negative", positive, negative)
	}

	nb.Dimension = 0
	for _, x := range X {
		if k := x.Len(); k > 0 && x.Indices[k-1]+1 > nb.Dimension {
			nb.Dimension = x.Indices[k-1] + 1
		}
	}

	var counts [2][]float64
	var totals [2]float64
	for c := range counts {
		counts[c] = make([]float64, nb.Dimension)
	}

	for i, x := range X {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		c := classIndex(y[i])
		for k, feature := range x.Indices {
			counts[c][feature] += x.Values[k]
			totals[c] += x.Values[k]
		}
	}

	n := float64(len(y))
	nb.ClassLogPriors[0] = math.Log(float64(negative) / n)
	nb.ClassLogPriors[1] = math.Log(float64(positive) / n)

	denomSmoothing := nb.Alpha * float64(nb.Dimension)
	for c := range counts {
		nb.FeatureLogProbs[c] = make([]float64, nb.Dimension)
		logDenom := math.Log(totals[c] + denomSmoothing)
		for j, count := range counts[c] {
			nb.FeatureLogProbs[c][j] = math.Log(count+nb.Alpha) - logDenom
		}
	}

	return nil
}

// Score is the log-odds of the positive class.
func (nb *NaiveBayes) Score(x featurize.SparseVector) float64 {
	if nb.FeatureLogProbs[0] == nil {
		return 0
	}

	logPos := nb.ClassLogPriors[1]
	logNeg := nb.ClassLogPriors[0]
	for k, feature := range x.Indices {
		if feature >= nb.Dimension {
			continue
		}
		logPos += x.Values[k] * nb.FeatureLogProbs[1][feature]
		logNeg += x.Values[k] * nb.FeatureLogProbs[0][feature]
	}

	return logPos - logNeg
}

func (nb *NaiveBayes) Reset() {
	nb.Dimension = 0
	nb.FeatureLogProbs = [2][]float64{}
}

func classIndex(label bool) int {
	if label {
		return 1
	}
	return 0
}
