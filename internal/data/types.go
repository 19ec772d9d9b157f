package data

// LabeledExample is one line of a training or test file.
type LabeledExample struct {
	Text  string
	Label float32
}

func (e LabeledExample) Positive() bool {
	return e.Label > 0
}

type Prediction struct {
	PredictedLabel bool
	Score          float64
	Probability    float64
}

func (p Prediction) String() string {
	if p.PredictedLabel {
		return "Positive"
	}
	return "Negative"
}

func Texts(examples []LabeledExample) []string {
	texts := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
	}
	return texts
}

func Labels(examples []LabeledExample) []bool {
	labels := make([]bool, len(examples))
	for i, ex := range examples {
		labels[i] = ex.Positive()
	}
	return labels
}
