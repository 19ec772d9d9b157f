package persistence

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlsentiment/internal/featurize"
	"mlsentiment/internal/models"
)

func trainedBundle(t *testing.T, model models.Model) *ModelBundle {
	t.Helper()

	texts := []string{"great movie", "great fun", "terrible film", "terrible plot"}
	labels := []bool{true, true, false, false}

	featurizer := featurize.NewTextFeaturizer(featurize.DefaultOptions(), nil)
	X, err := featurizer.FitTransform(texts)
	require.NoError(t, err)
	require.NoError(t, model.Fit(context.Background(), X, labels))

	return NewModelBundle(featurizer, model)
}

func TestModelBundleRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		model models.Model
	}{
		{name: "fasttree", model: models.NewFastTree(5, 5, 1, 0.2)},
		{name: "bayes", model: models.NewNaiveBayes(1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := trainedBundle(t, tt.model)
			bundle.Metadata.Dataset = "train.tsv"

			path := filepath.Join(t.TempDir(), "model.zip")
			require.NoError(t, bundle.Save(path))

			loaded, err := LoadModelBundle(path)
			require.NoError(t, err)

			assert.Equal(t, FormatVersion, loaded.FormatVersion)
			assert.Equal(t, bundle.Featurizer.Vocabulary, loaded.Featurizer.Vocabulary)
			assert.Equal(t, bundle.Featurizer.Options, loaded.Featurizer.Options)
			assert.Equal(t, tt.model.GetName(), loaded.Metadata.ModelName)
			assert.Equal(t, "train.tsv", loaded.Metadata.Dataset)

			for _, text := range []string{"great movie", "terrible film", "unseen words"} {
				want, err := bundle.Featurizer.Transform(text)
				require.NoError(t, err)
				got, err := loaded.Featurizer.Transform(text)
				require.NoError(t, err)

				assert.Equal(t, want, got)
				assert.Equal(t, bundle.Model.Score(want), loaded.Model.Score(got), text)
			}
		})
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.zip")

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))
	require.NoError(t, trainedBundle(t, models.NewNaiveBayes(1.0)).Save(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "model.zip", entries[0].Name())

	_, err = LoadModelBundle(path)
	assert.NoError(t, err)
}

func TestDecodeIncompatible(t *testing.T) {
	var wrongVersion bytes.Buffer
	bundle := trainedBundle(t, models.NewNaiveBayes(1.0))
	bundle.FormatVersion = FormatVersion + 1
	require.NoError(t, bundle.Encode(&wrongVersion))

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "wrong magic", input: []byte("PK\x03\x04 not a model")},
		{name: "corrupt body", input: []byte("SNTMthis is not a gob stream")},
		{name: "wrong version", input: wrongVersion.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeModelBundle(bytes.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrIncompatibleModel)
		})
	}
}

func TestLoadModelBundleErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModelBundle(filepath.Join(dir, "missing.zip"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.zip")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = LoadModelBundle(empty)
	assert.ErrorIs(t, err, ErrIncompatibleModel)
}

func TestEnsureWritable(t *testing.T) {
	dir := t.TempDir()

	fresh := filepath.Join(dir, "fresh.zip")
	created, err := EnsureWritable(fresh)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, fresh)

	existing := filepath.Join(dir, "existing.zip")
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0644))
	created, err = EnsureWritable(existing)
	require.NoError(t, err)
	assert.False(t, created)

	contents, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(contents))

	_, err = EnsureWritable(filepath.Join(dir, "no", "such", "dir", "model.zip"))
	assert.Error(t, err)
}
