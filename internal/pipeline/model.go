package pipeline

import (
	"fmt"

	"mlsentiment/internal/data"
	"mlsentiment/internal/models"
	"mlsentiment/internal/persistence"
)

// TrainedModel is a fitted pipeline that can score text and persist itself.
type TrainedModel interface {
	Predict(text string) (data.Prediction, error)
	Save(path string) error
	Info() persistence.BundleMetadata
}

// PredictionModel is read-only after training or loading.
type PredictionModel struct {
	bundle *persistence.ModelBundle
}

func (pm *PredictionModel) Predict(text string) (data.Prediction, error) {
	x, err := pm.bundle.Featurizer.Transform(text)
	if err != nil {
		return data.Prediction{}, fmt.Errorf("failed to featurize input: %w", err)
	}

	score := pm.bundle.Model.Score(x)
	return data.Prediction{
		PredictedLabel: score > 0,
		Score:          score,
		Probability:    models.Sigmoid(score),
	}, nil
}

func (pm *PredictionModel) Save(path string) error {
	return pm.bundle.Save(path)
}

func (pm *PredictionModel) Info() persistence.BundleMetadata {
	return pm.bundle.Metadata
}

func Load(path string) (*PredictionModel, error) {
	bundle, err := persistence.LoadModelBundle(path)
	if err != nil {
		return nil, err
	}
	return &PredictionModel{bundle: bundle}, nil
}
