package data

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

const maxLineSize = 1 << 20

// TextLoader reads delimited text where column 0 is the text and column 1 the label.
type TextLoader struct {
	Path      string
	Separator rune
	HasHeader bool
}

func NewTextLoader(path string) *TextLoader {
	return &TextLoader{
		Path:      path,
		Separator: '\t',
		HasHeader: false,
	}
}

func (tl *TextLoader) StageName() string {
	return "TextLoader"
}

func (tl *TextLoader) Load(ctx context.Context) ([]LabeledExample, error) {
	file, err := os.Open(tl.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	return tl.Read(ctx, file)
}

func (tl *TextLoader) Read(ctx context.Context, r io.Reader) ([]LabeledExample, error) {
	var examples []LabeledExample
	err := tl.Each(ctx, r, func(ex LabeledExample) error {
		examples = append(examples, ex)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return examples, nil
}

// Each streams records to fn without holding the whole file in memory.
// Quotes are literal: only the separator delimits columns.
func (tl *TextLoader) Each(ctx context.Context, r io.Reader, fn func(LabeledExample) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	sep := string(tl.separator())
	headerPending := tl.HasHeader
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++

		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if headerPending {
			headerPending = false
			continue
		}

		ex, err := parseRecord(strings.SplitN(text, sep, 3))
		if err != nil {
			return fmt.Errorf("%s line %d: %w", tl.Path, line, err)
		}

		if err := fn(ex); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s after line %d: %w", tl.Path, line, err)
	}
	return ctx.Err()
}

func (tl *TextLoader) separator() rune {
	if tl.Separator == 0 {
		return '\t'
	}
	return tl.Separator
}

func parseRecord(record []string) (LabeledExample, error) {
	if len(record) < 2 {
		return LabeledExample{}, fmt.Errorf("expected text and label columns, got %d field(s)", len(record))
	}

	value, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return LabeledExample{}, fmt.Errorf("invalid label %q: %w", record[1], err)
	}
	label, _ := value.Float64()

	return LabeledExample{
		Text:  record[0],
		Label: float32(label),
	}, nil
}
