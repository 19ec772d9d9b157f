package evaluation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

const probabilityEpsilon = 1e-15

type BinaryMetrics struct {
	Accuracy          float64 `json:"accuracy"`
	AUC               float64 `json:"auc"`
	F1Score           float64 `json:"f1_score"`
	Precision         float64 `json:"positive_precision"`
	Recall            float64 `json:"positive_recall"`
	NegativePrecision float64 `json:"negative_precision"`
	NegativeRecall    float64 `json:"negative_recall"`
	LogLoss           float64 `json:"log_loss"`
	TruePositives     int     `json:"true_positives"`
	FalsePositives    int     `json:"false_positives"`
	TrueNegatives     int     `json:"true_negatives"`
	FalseNegatives    int     `json:"false_negatives"`
	NumSamples        int     `json:"num_samples"`
}

// CalculateBinaryMetrics scores predictions where score > 0 means positive.
// probabilities may be nil, in which case LogLoss is left at zero.
func CalculateBinaryMetrics(labels []bool, scores, probabilities []float64) (*BinaryMetrics, error) {
	if len(labels) != len(scores) {
		return nil, fmt.Errorf("labels and scores have different lengths: %d vs %d", len(labels), len(scores))
	}
	if probabilities != nil && len(probabilities) != len(labels) {
		return nil, fmt.Errorf("labels and probabilities have different lengths: %d vs %d", len(labels), len(probabilities))
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("cannot compute metrics on an empty set")
	}

	m := &BinaryMetrics{NumSamples: len(labels)}
	for i, actual := range labels {
		predicted := scores[i] > 0
		switch {
		case actual && predicted:
			m.TruePositives++
		case !actual && predicted:
			m.FalsePositives++
		case !actual && !predicted:
			m.TrueNegatives++
		default:
			m.FalseNegatives++
		}
	}

	tp, fp := float64(m.TruePositives), float64(m.FalsePositives)
	tn, fn := float64(m.TrueNegatives), float64(m.FalseNegatives)

	m.Accuracy = (tp + tn) / float64(m.NumSamples)
	m.Precision = safeDivide(tp, tp+fp)
	m.Recall = safeDivide(tp, tp+fn)
	m.F1Score = safeDivide(2*m.Precision*m.Recall, m.Precision+m.Recall)
	m.NegativePrecision = safeDivide(tn, tn+fn)
	m.NegativeRecall = safeDivide(tn, tn+fp)
	m.AUC = areaUnderROC(labels, scores)

	if probabilities != nil {
		m.LogLoss = logLoss(labels, probabilities)
	}

	return m, nil
}

// areaUnderROC is zero when only one class is present, since no ranking
// between classes exists.
func areaUnderROC(labels []bool, scores []float64) float64 {
	positives := 0
	for _, l := range labels {
		if l {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return 0
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	y := make([]float64, len(order))
	classes := make([]bool, len(order))
	for i, idx := range order {
		y[i] = scores[idx]
		classes[i] = labels[idx]
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

func logLoss(labels []bool, probabilities []float64) float64 {
	sum := 0.0
	for i, actual := range labels {
		p := math.Min(math.Max(probabilities[i], probabilityEpsilon), 1-probabilityEpsilon)
		if actual {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(len(labels))
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}

// FormatPercent renders a ratio as a percentage with two decimals, e.g. 0.8571 -> "85.71%".
func FormatPercent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// Report is the fixed evaluation block printed after training.
func (m *BinaryMetrics) Report() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("PredictionModel quality metrics evaluation\n")
	b.WriteString("------------------------------------------\n")
	fmt.Fprintf(&b, "Accuracy: %s\n", FormatPercent(m.Accuracy))
	fmt.Fprintf(&b, "Auc: %s\n", FormatPercent(m.AUC))
	fmt.Fprintf(&b, "F1Score: %s\n", FormatPercent(m.F1Score))
	return b.String()
}

func (m *BinaryMetrics) FormatMetrics() string {
	result := fmt.Sprintf("Accuracy: %.4f\n", m.Accuracy)
	result += fmt.Sprintf("AUC: %.4f\n", m.AUC)
	result += fmt.Sprintf("Positive - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		m.Precision, m.Recall, m.F1Score)
	result += fmt.Sprintf("Negative - Precision: %.4f, Recall: %.4f\n",
		m.NegativePrecision, m.NegativeRecall)
	result += fmt.Sprintf("Log Loss: %.4f\n", m.LogLoss)
	result += fmt.Sprintf("Confusion: TP=%d FP=%d TN=%d FN=%d\n",
		m.TruePositives, m.FalsePositives, m.TrueNegatives, m.FalseNegatives)
	return result
}
