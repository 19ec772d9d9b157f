package evaluation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mlsentiment/internal/data"
)

// Predictor is the part of a trained model the evaluator needs.
type Predictor interface {
	Predict(text string) (data.Prediction, error)
}

type Evaluator struct {
	BatchSize int
	Logger    *zap.Logger
}

func NewEvaluator(batchSize int, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{BatchSize: batchSize, Logger: logger}
}

func (e *Evaluator) Evaluate(ctx context.Context, model Predictor, examples []data.LabeledExample) (*BinaryMetrics, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("test set is empty")
	}

	labels := data.Labels(examples)
	scores := make([]float64, len(examples))
	probabilities := make([]float64, len(examples))

	batches := data.NewBatchProcessor(e.BatchSize)
	err := batches.ProcessBatches(examples, func(start int, batch []data.LabeledExample) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, ex := range batch {
			pred, err := model.Predict(ex.Text)
			if err != nil {
				return fmt.Errorf("failed to score example %d: %w", start+i, err)
			}
			scores[start+i] = pred.Score
			probabilities[start+i] = pred.Probability
		}
		e.Logger.Debug("scored batch", zap.Int("start", start), zap.Int("size", len(batch)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics, err := CalculateBinaryMetrics(labels, scores, probabilities)
	if err != nil {
		return nil, err
	}

	e.Logger.Info("evaluation complete",
		zap.Int("samples", metrics.NumSamples),
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Float64("auc", metrics.AUC),
		zap.Float64("f1", metrics.F1Score),
		zap.Float64("log_loss", metrics.LogLoss))
	e.Logger.Debug("evaluation details", zap.String("metrics", metrics.FormatMetrics()))

	return metrics, nil
}

func (e *Evaluator) EvaluateFile(ctx context.Context, model Predictor, loader *data.TextLoader) (*BinaryMetrics, error) {
	examples, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load test data: %w", err)
	}
	return e.Evaluate(ctx, model, examples)
}
