package pipeline

import (
	"mlsentiment/internal/featurize"
	"mlsentiment/internal/models"
)

// Stage is one step of a learning pipeline. The concrete stage types are
// *data.TextLoader, *FeaturizerStage and *ClassifierStage.
type Stage interface {
	StageName() string
}

type FeaturizerStage struct {
	Options  featurize.Options
	analyzer *featurize.Analyzer
}

func NewTextFeaturizer(opts featurize.Options) *FeaturizerStage {
	return &FeaturizerStage{Options: opts}
}

func (s *FeaturizerStage) StageName() string {
	return "TextFeaturizer"
}

// newFeaturizer returns an unfitted featurizer. All featurizers from one stage
// share the stage's analyzer and therefore its token cache.
func (s *FeaturizerStage) newFeaturizer() (*featurize.TextFeaturizer, error) {
	if s.analyzer == nil {
		analyzer, err := featurize.NewAnalyzer(s.Options.Tokenizer, s.Options.CacheSize)
		if err != nil {
			return nil, err
		}
		s.analyzer = analyzer
	}
	return featurize.NewTextFeaturizer(s.Options, s.analyzer), nil
}

type ClassifierStage struct {
	Config models.ModelConfig
}

func NewClassifier(config models.ModelConfig) *ClassifierStage {
	return &ClassifierStage{Config: config}
}

func (s *ClassifierStage) StageName() string {
	switch s.Config.Algorithm {
	case models.AlgorithmBayes:
		return "NaiveBayesClassifier"
	default:
		return "FastTreeBinaryClassifier"
	}
}
