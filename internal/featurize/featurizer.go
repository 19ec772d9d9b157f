package featurize

import (
	"fmt"
	"sort"
	"strings"
)

const (
	textStart = "\x02"
	textEnd   = "\x03"
)

type Options struct {
	Tokenizer       string
	WordNgramLength int
	CharNgramLength int
	CacheSize       int
}

func DefaultOptions() Options {
	return Options{
		Tokenizer:       TokenizerWord,
		WordNgramLength: 1,
		CharNgramLength: 3,
		CacheSize:       10000,
	}
}

// TextFeaturizer maps text to an L2-normalized bag of word and character
// n-grams over a vocabulary fixed at Fit time.
type TextFeaturizer struct {
	Options    Options
	Vocabulary map[string]int
	analyzer   *Analyzer
}

// NewTextFeaturizer builds an unfitted featurizer. A nil analyzer is created
// from opts on first use.
func NewTextFeaturizer(opts Options, analyzer *Analyzer) *TextFeaturizer {
	if opts.WordNgramLength <= 0 && opts.CharNgramLength <= 0 {
		opts.WordNgramLength = 1
	}
	return &TextFeaturizer{
		Options:  opts,
		analyzer: analyzer,
	}
}

func (tf *TextFeaturizer) Fit(texts []string) error {
	if err := tf.ensureAnalyzer(); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for _, text := range texts {
		for _, gram := range tf.ngrams(text) {
			seen[gram] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return fmt.Errorf("featurizer produced an empty vocabulary from %d texts", len(texts))
	}

	grams := make([]string, 0, len(seen))
	for gram := range seen {
		grams = append(grams, gram)
	}
	sort.Strings(grams)

	tf.Vocabulary = make(map[string]int, len(grams))
	for i, gram := range grams {
		tf.Vocabulary[gram] = i
	}

	return nil
}

func (tf *TextFeaturizer) Transform(text string) (SparseVector, error) {
	if tf.Vocabulary == nil {
		return SparseVector{}, fmt.Errorf("featurizer must be fitted before transform")
	}
	if err := tf.ensureAnalyzer(); err != nil {
		return SparseVector{}, err
	}

	counts := make(map[int]float64)
	for _, gram := range tf.ngrams(text) {
		if idx, ok := tf.Vocabulary[gram]; ok {
			counts[idx]++
		}
	}

	return NewSparseVector(counts).Normalize(), nil
}

func (tf *TextFeaturizer) TransformAll(texts []string) ([]SparseVector, error) {
	vectors := make([]SparseVector, len(texts))
	for i, text := range texts {
		v, err := tf.Transform(text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (tf *TextFeaturizer) FitTransform(texts []string) ([]SparseVector, error) {
	if err := tf.Fit(texts); err != nil {
		return nil, err
	}
	return tf.TransformAll(texts)
}

func (tf *TextFeaturizer) Dimension() int {
	return len(tf.Vocabulary)
}

func (tf *TextFeaturizer) ensureAnalyzer() error {
	if tf.analyzer != nil {
		return nil
	}
	analyzer, err := NewAnalyzer(tf.Options.Tokenizer, tf.Options.CacheSize)
	if err != nil {
		return err
	}
	tf.analyzer = analyzer
	return nil
}

func (tf *TextFeaturizer) ngrams(text string) []string {
	analysis := tf.analyzer.Analyze(text)
	var grams []string

	tokens := analysis.Tokens
	for n := 1; n <= tf.Options.WordNgramLength; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, "w:"+strings.Join(tokens[i:i+n], "|"))
		}
	}

	if n := tf.Options.CharNgramLength; n > 0 {
		chars := []rune(textStart + analysis.Normalized + textEnd)
		for i := 0; i+n <= len(chars); i++ {
			grams = append(grams, "c:"+string(chars[i:i+n]))
		}
	}

	return grams
}
