package models

import (
	"fmt"
)

const (
	AlgorithmFastTree = "fasttree"
	AlgorithmBayes    = "bayes"
)

type ModelConfig struct {
	Algorithm          string
	NumLeaves          int
	NumTrees           int
	MinDocumentsInLeaf int
	LearningRate       float64
	Parallel           bool
	MaxWorkers         int
	Alpha              float64
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case AlgorithmFastTree, "":
		if config.NumLeaves <= 0 {
			config.NumLeaves = 5
		}
		if config.NumTrees <= 0 {
			config.NumTrees = 5
		}
		if config.MinDocumentsInLeaf <= 0 {
			config.MinDocumentsInLeaf = 2
		}
		ft := NewFastTree(config.NumLeaves, config.NumTrees, config.MinDocumentsInLeaf, config.LearningRate)
		ft.Parallel = config.Parallel
		if config.MaxWorkers > 0 {
			ft.MaxWorkers = config.MaxWorkers
		}
		return ft, nil

	case AlgorithmBayes:
		return NewNaiveBayes(config.Alpha), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func DefaultConfig(algorithm string) ModelConfig {
	config := ModelConfig{Algorithm: algorithm}

	switch algorithm {
	case AlgorithmFastTree:
		config.NumLeaves = 5
		config.NumTrees = 5
		config.MinDocumentsInLeaf = 2
		config.LearningRate = 0.2
		config.Parallel = true
		config.MaxWorkers = 4
	case AlgorithmBayes:
		config.Alpha = 1.0
	}

	return config
}
