package ml

import (
	"fmt"
	"sort"
)

// LabelEncoder maps string labels to dense integer classes in sorted label order.
type LabelEncoder struct {
	Classes []string
	index   map[string]int
}

// FitLabelEncoder collects the sorted unique labels.
func FitLabelEncoder(labels []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Strings(classes)
	e := &LabelEncoder{Classes: classes}
	e.Prepare()
	return e
}

func (e *LabelEncoder) lookup() map[string]int {
	if e.index == nil || len(e.index) != len(e.Classes) {
		idx := make(map[string]int, len(e.Classes))
		for i, c := range e.Classes {
			idx[c] = i
		}
		e.index = idx
	}
	return e.index
}

// Prepare builds the lookup table. Call once after decoding so concurrent Encode calls
// only read.
func (e *LabelEncoder) Prepare() { e.lookup() }

// Encode returns the class index of label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	i, ok := e.lookup()[label]
	if !ok {
		return 0, fmt.Errorf("unknown label %q", label)
	}
	return i, nil
}

// EncodeAll encodes every label, failing on the first unknown one.
func (e *LabelEncoder) EncodeAll(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		c, err := e.Encode(l)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Decode returns the label of class i.
func (e *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.Classes) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", i, len(e.Classes))
	}
	return e.Classes[i], nil
}

// Len returns the number of classes.
func (e *LabelEncoder) Len() int { return len(e.Classes) }
