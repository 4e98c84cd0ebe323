package ml

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TfidfConfig controls vocabulary construction and term weighting.
type TfidfConfig struct {
	MaxFeatures int     // keep the most frequent terms; 0 = unlimited
	MinNGram    int     // smallest n-gram length, >= 1
	MaxNGram    int     // largest n-gram length, >= MinNGram
	MinDF       int     // drop terms seen in fewer documents
	MaxDF       float64 // drop terms seen in more than this fraction of documents
	SublinearTF bool    // use 1+ln(tf) instead of raw counts
}

// DefaultTfidfConfig is the configuration the symptom classifier is trained with.
func DefaultTfidfConfig() TfidfConfig {
	return TfidfConfig{
		MaxFeatures: 1000,
		MinNGram:    1,
		MaxNGram:    3,
		MinDF:       1,
		MaxDF:       0.95,
		SublinearTF: true,
	}
}

// TfidfVectorizer turns documents into L2-normalized TF-IDF sparse vectors.
type TfidfVectorizer struct {
	Config     TfidfConfig
	Vocabulary map[string]int
	IDF        []float64
}

var ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain no terms after pruning")

// NewTfidfVectorizer returns an unfitted vectorizer.
func NewTfidfVectorizer(cfg TfidfConfig) *TfidfVectorizer {
	if cfg.MinNGram <= 0 {
		cfg.MinNGram = 1
	}
	if cfg.MaxNGram < cfg.MinNGram {
		cfg.MaxNGram = cfg.MinNGram
	}
	if cfg.MinDF <= 0 {
		cfg.MinDF = 1
	}
	if cfg.MaxDF <= 0 || cfg.MaxDF > 1 {
		cfg.MaxDF = 1
	}
	return &TfidfVectorizer{Config: cfg}
}

// Analyze lowercases, tokenizes and expands doc into its word n-grams.
func (v *TfidfVectorizer) Analyze(doc string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	var terms []string
	for n := v.Config.MinNGram; n <= v.Config.MaxNGram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				terms = append(terms, tokens[i])
				continue
			}
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Fit learns the vocabulary and inverse document frequencies from docs.
func (v *TfidfVectorizer) Fit(docs []string) error {
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range v.Analyze(doc) {
			tf[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	n := len(docs)
	maxDocCount := int(math.Floor(v.Config.MaxDF * float64(n)))
	if v.Config.MaxDF >= 1 {
		maxDocCount = n
	}
	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count < v.Config.MinDF || count > maxDocCount {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return ErrEmptyVocabulary
	}

	if v.Config.MaxFeatures > 0 && len(terms) > v.Config.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.Config.MaxFeatures]
	}
	sort.Strings(terms)

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return nil
}

// Transform vectorizes one document. Unknown terms are ignored; a document with no
// known terms yields the zero vector.
func (v *TfidfVectorizer) Transform(doc string) SparseVector {
	counts := make(map[int]int)
	for _, term := range v.Analyze(doc) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}
	out := SparseVector{Dim: len(v.IDF)}
	if len(counts) == 0 {
		return out
	}
	out.Indices = make([]int, 0, len(counts))
	for idx := range counts {
		out.Indices = append(out.Indices, idx)
	}
	sort.Ints(out.Indices)
	out.Values = make([]float64, len(out.Indices))
	var norm float64
	for k, idx := range out.Indices {
		w := float64(counts[idx])
		if v.Config.SublinearTF {
			w = 1 + math.Log(w)
		}
		w *= v.IDF[idx]
		out.Values[k] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range out.Values {
			out.Values[k] /= norm
		}
	}
	return out
}

// FitTransform fits on docs and returns their vectors.
func (v *TfidfVectorizer) FitTransform(docs []string) ([]Vector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	out := make([]Vector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out, nil
}

// NumFeatures returns the vocabulary size.
func (v *TfidfVectorizer) NumFeatures() int { return len(v.IDF) }
