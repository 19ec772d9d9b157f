package evaluation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"mlsentiment/internal/data"
)

// FitFunc trains a fresh model on one fold's training examples.
type FitFunc func(ctx context.Context, train []data.LabeledExample) (Predictor, error)

type CrossValidator struct {
	NFolds     int
	Stratified bool
	Shuffle    bool
	RandomSeed int64
	Evaluator  *Evaluator
}

type CVResult struct {
	Folds        []*BinaryMetrics
	MeanAccuracy float64
	StdAccuracy  float64
	MeanAUC      float64
	MeanF1       float64
}

func NewCrossValidator(nFolds int, stratified bool, evaluator *Evaluator) *CrossValidator {
	if evaluator == nil {
		evaluator = NewEvaluator(0, nil)
	}
	return &CrossValidator{
		NFolds:     nFolds,
		Stratified: stratified,
		Shuffle:    true,
		RandomSeed: 42,
		Evaluator:  evaluator,
	}
}

func (cv *CrossValidator) CrossValidate(ctx context.Context, examples []data.LabeledExample, fit FitFunc) (*CVResult, error) {
	folds, err := cv.KFoldSplit(examples)
	if err != nil {
		return nil, err
	}

	result := &CVResult{Folds: make([]*BinaryMetrics, len(folds))}
	for i, testIndices := range folds {
		train, test := splitByIndices(examples, testIndices)

		model, err := fit(ctx, train)
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", i, err)
		}

		metrics, err := cv.Evaluator.Evaluate(ctx, model, test)
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", i, err)
		}
		result.Folds[i] = metrics

		cv.Evaluator.Logger.Debug("fold evaluated",
			zap.Int("fold", i),
			zap.Int("train", len(train)),
			zap.Int("test", len(test)),
			zap.Float64("accuracy", metrics.Accuracy))
	}

	accuracies := make([]float64, len(result.Folds))
	for i, m := range result.Folds {
		accuracies[i] = m.Accuracy
		result.MeanAUC += m.AUC
		result.MeanF1 += m.F1Score
	}
	result.MeanAccuracy, result.StdAccuracy = calculateStats(accuracies)
	result.MeanAUC /= float64(len(result.Folds))
	result.MeanF1 /= float64(len(result.Folds))

	return result, nil
}

// KFoldSplit returns the test indices of each fold. Stratified folds deal
// each class round-robin so every fold keeps the class balance.
func (cv *CrossValidator) KFoldSplit(examples []data.LabeledExample) ([][]int, error) {
	n := len(examples)
	if cv.NFolds < 2 || cv.NFolds > n {
		return nil, fmt.Errorf("invalid number of folds: %d (must be between 2 and %d)", cv.NFolds, n)
	}

	rng := rand.New(rand.NewSource(cv.RandomSeed))
	shuffle := func(indices []int) {
		if cv.Shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([][]int, cv.NFolds)

	if cv.Stratified {
		var positive, negative []int
		for i, ex := range examples {
			if ex.Positive() {
				positive = append(positive, i)
			} else {
				negative = append(negative, i)
			}
		}
		shuffle(positive)
		shuffle(negative)

		next := 0
		for _, group := range [][]int{positive, negative} {
			for _, idx := range group {
				folds[next%cv.NFolds] = append(folds[next%cv.NFolds], idx)
				next++
			}
		}
		return folds, nil
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	shuffle(indices)

	foldSize := n / cv.NFolds
	for i := 0; i < cv.NFolds; i++ {
		start := i * foldSize
		end := start + foldSize
		if i == cv.NFolds-1 {
			end = n
		}

		folds[i] = make([]int, end-start)
		copy(folds[i], indices[start:end])
	}

	return folds, nil
}

func splitByIndices(examples []data.LabeledExample, testIndices []int) (train, test []data.LabeledExample) {
	testSet := make(map[int]bool, len(testIndices))
	for _, idx := range testIndices {
		testSet[idx] = true
	}

	train = make([]data.LabeledExample, 0, len(examples)-len(testIndices))
	for i, ex := range examples {
		if !testSet[i] {
			train = append(train, ex)
		}
	}

	test = make([]data.LabeledExample, len(testIndices))
	for i, idx := range testIndices {
		test[i] = examples[idx]
	}

	return train, test
}

func calculateStats(scores []float64) (mean, std float64) {
	if len(scores) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean = sum / float64(len(scores))

	if len(scores) > 1 {
		variance := 0.0
		for _, s := range scores {
			diff := s - mean
			variance += diff * diff
		}
		variance /= float64(len(scores) - 1)
		std = math.Sqrt(variance)
	}

	return mean, std
}
