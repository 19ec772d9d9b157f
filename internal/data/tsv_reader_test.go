package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLoaderRead(t *testing.T) {
	input := "great movie\t1\n\nterrible film\t0\nok, I guess\t0.0\nfine\t-1\n"

	examples, err := NewTextLoader("train.tsv").Read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, examples, 4)

	assert.Equal(t, LabeledExample{Text: "great movie", Label: 1}, examples[0])
	assert.Equal(t, LabeledExample{Text: "terrible film", Label: 0}, examples[1])
	assert.Equal(t, "ok, I guess", examples[2].Text)

	assert.True(t, examples[0].Positive())
	assert.False(t, examples[1].Positive())
	assert.False(t, examples[2].Positive())
	assert.False(t, examples[3].Positive())
}

func TestTextLoaderQuotesAreLiteral(t *testing.T) {
	input := "\"Great\" acting, weak plot\t1\n" +
		"terrible film\t0\n" +
		"\"wow what a ride\t1\n" +
		"the \"best\" film ever\t1\n" +
		"bad\t0\r\n"

	examples, err := NewTextLoader("train.tsv").Read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"\"Great\" acting, weak plot",
		"terrible film",
		"\"wow what a ride",
		"the \"best\" film ever",
		"bad",
	}, Texts(examples))
	assert.Equal(t, []bool{true, false, true, true, false}, Labels(examples))
}

func TestTextLoaderExtraColumnsIgnored(t *testing.T) {
	examples, err := NewTextLoader("x").Read(context.Background(), strings.NewReader("nice\t1\tcomment\n"))
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "nice", examples[0].Text)
}

func TestTextLoaderHeader(t *testing.T) {
	loader := NewTextLoader("x")
	loader.HasHeader = true

	examples, err := loader.Read(context.Background(), strings.NewReader("SentimentText\tSentiment\nnice\t1\n"))
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "nice", examples[0].Text)
}

func TestTextLoaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "bad label", input: "fine\t1\nnice\tmaybe\n", wantErr: "train.tsv line 2: invalid label"},
		{name: "missing label", input: "only text\n", wantErr: "expected text and label columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTextLoader("train.tsv").Read(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTextLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.tsv")
	require.NoError(t, os.WriteFile(path, []byte("good\t1\nbad\t0\n"), 0644))

	examples, err := NewTextLoader(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "bad"}, Texts(examples))
	assert.Equal(t, []bool{true, false}, Labels(examples))
}

func TestTextLoaderMissingFile(t *testing.T) {
	_, err := NewTextLoader(filepath.Join(t.TempDir(), "nope.tsv")).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTextLoaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextLoader("x").Read(ctx, strings.NewReader("good\t1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictionString(t *testing.T) {
	assert.Equal(t, "Positive", Prediction{PredictedLabel: true}.String())
	assert.Equal(t, "Negative", Prediction{}.String())
}
