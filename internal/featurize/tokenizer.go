package featurize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkoukk/tiktoken-go"
)

const (
	TokenizerWord = "word"
	TokenizerBPE  = "bpe"

	bpeEncoding = "cl100k_base"
)

type Tokenizer interface {
	Tokenize(text string) []string
}

type WordTokenizer struct{}

func (WordTokenizer) Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// BPETokenizer emits cl100k_base token ids as strings. The encoding is
// downloaded on first use unless TIKTOKEN_CACHE_DIR already holds it.
type BPETokenizer struct {
	enc *tiktoken.Tiktoken
}

func NewBPETokenizer() (*BPETokenizer, error) {
	tke, err := tiktoken.GetEncoding(bpeEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &BPETokenizer{enc: tke}, nil
}

func (t *BPETokenizer) Tokenize(text string) []string {
	ids := t.enc.Encode(text, nil, nil)
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = strconv.Itoa(id)
	}
	return tokens
}

func NewTokenizer(name string) (Tokenizer, error) {
	switch name {
	case "", TokenizerWord:
		return WordTokenizer{}, nil
	case TokenizerBPE:
		return NewBPETokenizer()
	default:
		return nil, fmt.Errorf("unknown tokenizer: %s", name)
	}
}

// Analysis is the normalized form of a text and its tokens.
type Analysis struct {
	Normalized string
	Tokens     []string
}

// Analyzer normalizes and tokenizes text, memoizing results in an LRU cache
// so repeated passes over the same corpus skip the work.
type Analyzer struct {
	tokenizer Tokenizer
	cache     *lru.Cache[string, Analysis]
}

func NewAnalyzer(tokenizerName string, cacheSize int) (*Analyzer, error) {
	tokenizer, err := NewTokenizer(tokenizerName)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{tokenizer: tokenizer}
	if cacheSize > 0 {
		cache, err := lru.New[string, Analysis](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create token cache: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

func (a *Analyzer) Analyze(text string) Analysis {
	if a.cache != nil {
		if cached, ok := a.cache.Get(text); ok {
			return cached
		}
	}

	normalized := Normalize(text)
	result := Analysis{
		Normalized: normalized,
		Tokens:     a.tokenizer.Tokenize(normalized),
	}

	if a.cache != nil {
		a.cache.Add(text, result)
	}
	return result
}

func (a *Analyzer) CacheLen() int {
	if a.cache == nil {
		return 0
	}
	return a.cache.Len()
}
