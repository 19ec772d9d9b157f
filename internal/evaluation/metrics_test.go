package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBinaryMetrics(t *testing.T) {
	labels := []bool{true, true, false, false}
	scores := []float64{2, -1, 1, -3}

	m, err := CalculateBinaryMetrics(labels, scores, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, m.TruePositives)
	assert.Equal(t, 1, m.FalseNegatives)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Equal(t, 1, m.TrueNegatives)
	assert.InDelta(t, 0.5, m.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, m.Precision, 1e-12)
	assert.InDelta(t, 0.5, m.Recall, 1e-12)
	assert.InDelta(t, 0.5, m.F1Score, 1e-12)
	assert.InDelta(t, 0.75, m.AUC, 1e-9)
	assert.Equal(t, 0.0, m.LogLoss)
}

func TestAreaUnderROC(t *testing.T) {
	tests := []struct {
		name   string
		labels []bool
		scores []float64
		want   float64
	}{
		{name: "perfect", labels: []bool{false, false, true, true}, scores: []float64{-2, -1, 1, 2}, want: 1},
		{name: "inverted", labels: []bool{true, true, false, false}, scores: []float64{-2, -1, 1, 2}, want: 0},
		{name: "unsorted input", labels: []bool{true, false, true, false}, scores: []float64{3, -1, 2, 0.5}, want: 1},
		{name: "single class", labels: []bool{true, true}, scores: []float64{1, 2}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, areaUnderROC(tt.labels, tt.scores), 1e-9)
		})
	}
}

func TestCalculateBinaryMetricsNoPositivePredictions(t *testing.T) {
	m, err := CalculateBinaryMetrics([]bool{true, false}, []float64{-1, -1}, []float64{0.3, 0.3})
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.F1Score)
	assert.InDelta(t, 0.5, m.Accuracy, 1e-12)
	assert.Greater(t, m.LogLoss, 0.0)
}

func TestCalculateBinaryMetricsErrors(t *testing.T) {
	_, err := CalculateBinaryMetrics(nil, nil, nil)
	assert.Error(t, err)

	_, err = CalculateBinaryMetrics([]bool{true}, []float64{1, 2}, nil)
	assert.Error(t, err)

	_, err = CalculateBinaryMetrics([]bool{true}, []float64{1}, []float64{0.5, 0.5})
	assert.Error(t, err)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "85.71%", FormatPercent(0.8571))
	assert.Equal(t, "100.00%", FormatPercent(1))
	assert.Equal(t, "0.00%", FormatPercent(0))
	assert.Equal(t, "66.67%", FormatPercent(2.0/3.0))
}

func TestReport(t *testing.T) {
	m := &BinaryMetrics{Accuracy: 0.5, AUC: 0.75, F1Score: 0.5}

	want := "\n" +
		"PredictionModel quality metrics evaluation\n" +
		"------------------------------------------\n" +
		"Accuracy: 50.00%\n" +
		"Auc: 75.00%\n" +
		"F1Score: 50.00%\n"
	assert.Equal(t, want, m.Report())
}

func TestFormatMetrics(t *testing.T) {
	m, err := CalculateBinaryMetrics([]bool{true, true, false, false}, []float64{2, -1, 1, -3}, nil)
	require.NoError(t, err)

	want := "Accuracy: 0.5000\n" +
		"AUC: 0.7500\n" +
		"Positive - Precision: 0.5000, Recall: 0.5000, F1: 0.5000\n" +
		"Negative - Precision: 0.5000, Recall: 0.5000\n" +
		"Log Loss: 0.0000\n" +
		"Confusion: TP=1 FP=1 TN=1 FN=1\n"
	assert.Equal(t, want, m.FormatMetrics())
}
