package persistence

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"mlsentiment/internal/featurize"
	"mlsentiment/internal/models"
)

const FormatVersion = 1

var magic = []byte("SNTM")

// ErrIncompatibleModel reports an artifact that exists but cannot be decoded
// into a model this build understands.
var ErrIncompatibleModel = errors.New("incompatible model file")

func init() {
	gob.Register(&models.FastTree{})
	gob.Register(&models.NaiveBayes{})
}

type ModelBundle struct {
	FormatVersion int
	Featurizer    *featurize.TextFeaturizer
	Model         models.Model
	Metadata      BundleMetadata
	CreatedAt     time.Time
}

type BundleMetadata struct {
	ModelName      string
	Dataset        string
	TrainExamples  int
	VocabularySize int
	TrainingTime   time.Duration
	Parameters     map[string]any
}

func NewModelBundle(featurizer *featurize.TextFeaturizer, model models.Model) *ModelBundle {
	return &ModelBundle{
		FormatVersion: FormatVersion,
		Featurizer:    featurizer,
		Model:         model,
		CreatedAt:     time.Now(),
		Metadata: BundleMetadata{
			ModelName:      model.GetName(),
			Parameters:     model.GetParams(),
			VocabularySize: featurizer.Dimension(),
		},
	}
}

func (mb *ModelBundle) Encode(w io.Writer) error {
	if _, err := w.Write(magic); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(mb); err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	return nil
}

// Save writes the bundle next to filename and renames it into place, so a
// failed write never leaves a truncated artifact behind.
func (mb *ModelBundle) Save(filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".model-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if err := mb.Encode(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set model permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model: %w", err)
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}

func DecodeModelBundle(r io.Reader) (*ModelBundle, error) {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil || !bytes.Equal(header, magic) {
		return nil, fmt.Errorf("%w: missing model header", ErrIncompatibleModel)
	}

	var bundle ModelBundle
	if err := gob.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("%w: failed to decode bundle: %v", ErrIncompatibleModel, err)
	}

	if bundle.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d, expected %d", ErrIncompatibleModel, bundle.FormatVersion, FormatVersion)
	}
	if bundle.Featurizer == nil || bundle.Model == nil {
		return nil, fmt.Errorf("%w: bundle is missing its featurizer or model", ErrIncompatibleModel)
	}

	return &bundle, nil
}

func LoadModelBundle(filename string) (*ModelBundle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	return DecodeModelBundle(bufio.NewReader(file))
}

// EnsureWritable creates filename if it is missing, without truncating an
// existing file, so an unusable model path fails before training starts.
func EnsureWritable(filename string) (created bool, err error) {
	_, statErr := os.Stat(filename)
	created = errors.Is(statErr, os.ErrNotExist)

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return false, fmt.Errorf("model path is not writable: %w", err)
	}
	if err := file.Close(); err != nil {
		return created, fmt.Errorf("model path is not writable: %w", err)
	}
	return created, nil
}
