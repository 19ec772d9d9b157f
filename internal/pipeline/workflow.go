package pipeline

import (
	"context"

	"go.uber.org/zap"

	"mlsentiment/internal/data"
	"mlsentiment/internal/featurize"
	"mlsentiment/internal/models"
)

// Workflow builds the loader, featurizer and classifier pipeline from fixed
// settings. It is the default trainer and model loader for the CLI.
type Workflow struct {
	featurizer *FeaturizerStage
	classifier *ClassifierStage
	logger     *zap.Logger
}

func NewWorkflow(featurizerOpts featurize.Options, modelConfig models.ModelConfig, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		featurizer: NewTextFeaturizer(featurizerOpts),
		classifier: NewClassifier(modelConfig),
		logger:     logger,
	}
}

func (w *Workflow) Build(trainPath string) *Pipeline {
	return New().
		Add(data.NewTextLoader(trainPath)).
		Add(w.featurizer).
		Add(w.classifier).
		WithLogger(w.logger)
}

func (w *Workflow) Train(ctx context.Context, trainPath string) (TrainedModel, error) {
	model, err := w.Build(trainPath).Train(ctx)
	if err != nil {
		return nil, err
	}
	return model, nil
}

func (w *Workflow) Fit(ctx context.Context, examples []data.LabeledExample) (TrainedModel, error) {
	model, err := New(w.featurizer, w.classifier).WithLogger(w.logger).Fit(ctx, examples)
	if err != nil {
		return nil, err
	}
	return model, nil
}

func (w *Workflow) Load(path string) (TrainedModel, error) {
	model, err := Load(path)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("model loaded",
		zap.String("path", path),
		zap.String("model", model.Info().ModelName),
		zap.Int("vocabulary", model.Info().VocabularySize))
	return model, nil
}
