package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mlsentiment/internal/data"
	"mlsentiment/internal/models"
	"mlsentiment/internal/persistence"
)

// Pipeline is an ordered composition of a loader, a featurizer and a
// classifier that is trained as a unit.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{
		stages: stages,
		logger: zap.NewNop(),
	}
}

func (p *Pipeline) Add(stage Stage) *Pipeline {
	p.stages = append(p.stages, stage)
	return p
}

func (p *Pipeline) WithLogger(logger *zap.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

type resolvedStages struct {
	loader     *data.TextLoader
	featurizer *FeaturizerStage
	classifier *ClassifierStage
}

// resolve checks the fixed stage order: an optional leading loader, then one
// featurizer, then one classifier.
func (p *Pipeline) resolve() (resolvedStages, error) {
	var rs resolvedStages
	stages := p.stages

	if len(stages) > 0 {
		if loader, ok := stages[0].(*data.TextLoader); ok {
			rs.loader = loader
			stages = stages[1:]
		}
	}

	if len(stages) != 2 {
		return rs, fmt.Errorf("pipeline needs a featurizer followed by a classifier, got %d stage(s) after the loader", len(stages))
	}

	featurizer, ok := stages[0].(*FeaturizerStage)
	if !ok {
		return rs, fmt.Errorf("expected featurizer stage, got %s", stages[0].StageName())
	}
	classifier, ok := stages[1].(*ClassifierStage)
	if !ok {
		return rs, fmt.Errorf("expected classifier stage, got %s", stages[1].StageName())
	}

	rs.featurizer = featurizer
	rs.classifier = classifier
	return rs, nil
}

// Train loads the training data through the loader stage and fits the rest.
func (p *Pipeline) Train(ctx context.Context) (*PredictionModel, error) {
	rs, err := p.resolve()
	if err != nil {
		return nil, err
	}
	if rs.loader == nil {
		return nil, fmt.Errorf("pipeline must start with a loader stage")
	}

	examples, err := rs.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load training data: %w", err)
	}

	model, err := p.fit(ctx, rs, examples)
	if err != nil {
		return nil, err
	}
	model.bundle.Metadata.Dataset = rs.loader.Path
	return model, nil
}

// Fit trains on in-memory examples; a loader stage, if present, is not used.
func (p *Pipeline) Fit(ctx context.Context, examples []data.LabeledExample) (*PredictionModel, error) {
	rs, err := p.resolve()
	if err != nil {
		return nil, err
	}
	return p.fit(ctx, rs, examples)
}

func (p *Pipeline) fit(ctx context.Context, rs resolvedStages, examples []data.LabeledExample) (*PredictionModel, error) {
	validator := data.NewDataValidator()
	if err := validator.ValidateTrainingSet(examples); err != nil {
		return nil, err
	}

	stats := validator.GetDatasetStats(examples)
	p.logger.Info("training pipeline",
		zap.String("featurizer", rs.featurizer.StageName()),
		zap.String("classifier", rs.classifier.StageName()),
		zap.Int("examples", stats.Samples),
		zap.Int("positive", stats.Positive),
		zap.Int("negative", stats.Negative))

	startTime := time.Now()

	featurizer, err := rs.featurizer.newFeaturizer()
	if err != nil {
		return nil, fmt.Errorf("failed to create featurizer: %w", err)
	}
	X, err := featurizer.FitTransform(data.Texts(examples))
	if err != nil {
		return nil, fmt.Errorf("featurization failed: %w", err)
	}

	classifier, err := models.CreateModel(rs.classifier.Config)
	if err != nil {
		return nil, err
	}
	if err := classifier.Fit(ctx, X, data.Labels(examples)); err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	bundle := persistence.NewModelBundle(featurizer, classifier)
	bundle.Metadata.TrainExamples = len(examples)
	bundle.Metadata.TrainingTime = time.Since(startTime)

	p.logger.Info("pipeline trained",
		zap.String("model", bundle.Metadata.ModelName),
		zap.Int("vocabulary", bundle.Metadata.VocabularySize),
		zap.Duration("elapsed", bundle.Metadata.TrainingTime))

	return &PredictionModel{bundle: bundle}, nil
}
