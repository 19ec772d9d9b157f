package data

import (
	"fmt"
	"strings"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateExamples(examples []LabeledExample) error {
	if len(examples) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	for i, ex := range examples {
		if strings.TrimSpace(ex.Text) == "" {
			return fmt.Errorf("empty text at example %d", i)
		}
	}

	return nil
}

// ValidateLabels requires both classes, which the binary trainers need to learn anything.
func (dv *DataValidator) ValidateLabels(examples []LabeledExample) error {
	stats := dv.GetDatasetStats(examples)
	if stats.Positive == 0 || stats.Negative == 0 {
		return fmt.Errorf("dataset must contain positive and negative examples, found %d positive and %d negative",
			stats.Positive, stats.Negative)
	}
	return nil
}

func (dv *DataValidator) ValidateTrainingSet(examples []LabeledExample) error {
	if err := dv.ValidateExamples(examples); err != nil {
		return fmt.Errorf("training set validation failed: %w", err)
	}
	if err := dv.ValidateLabels(examples); err != nil {
		return fmt.Errorf("training set validation failed: %w", err)
	}
	return nil
}

type DatasetStats struct {
	Samples    int
	Positive   int
	Negative   int
	AvgTextLen float64
	MaxTextLen int
}

func (dv *DataValidator) GetDatasetStats(examples []LabeledExample) DatasetStats {
	stats := DatasetStats{Samples: len(examples)}
	if len(examples) == 0 {
		return stats
	}

	total := 0
	for _, ex := range examples {
		if ex.Positive() {
			stats.Positive++
		} else {
			stats.Negative++
		}
		n := len([]rune(ex.Text))
		total += n
		if n > stats.MaxTextLen {
			stats.MaxTextLen = n
		}
	}
	stats.AvgTextLen = float64(total) / float64(len(examples))

	return stats
}
