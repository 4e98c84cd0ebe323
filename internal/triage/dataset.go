package triage

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strings"
)

// Sample is one synthetic training row.
type Sample struct {
	Text      string
	Disease   string
	Specialty string
}

var (
	connectors = []string{", ", " and ", ", ", " with ", ", also "}
	prefixes   = []string{
		"I have ", "Experiencing ", "Suffering from ", "Feeling ",
		"I am having ", "Having ", "", "Got ", "Recently developed ",
		"Patient has ", "Started with ", "Symptoms include ",
	}
	suffixes = []string{
		"", " for few days", " since yesterday", " since last week",
		" recently", " from past 2 days", " today", " for a while",
		" getting worse", " mild", " severe",
	}
)

const maxSymptomsPerSample = 7

// GenerateDataset produces perDisease descriptions for every catalog entry. Each one
// joins 2 to 7 distinct symptoms of the disease with random connectors and wraps them
// in a random prefix and suffix.
func GenerateDataset(catalog []Disease, perDisease int, rng *rand.Rand) []Sample {
	out := make([]Sample, 0, len(catalog)*perDisease)
	for _, d := range catalog {
		upper := len(d.Symptoms)
		if upper > maxSymptomsPerSample {
			upper = maxSymptomsPerSample
		}
		for i := 0; i < perDisease; i++ {
			n := upper
			if upper > 2 {
				n = 2 + rng.Intn(upper-1)
			}
			picked := rng.Perm(len(d.Symptoms))[:n]

			var b strings.Builder
			b.WriteString(prefixes[rng.Intn(len(prefixes))])
			for j, k := range picked {
				if j > 0 {
					b.WriteString(connectors[rng.Intn(len(connectors))])
				}
				b.WriteString(d.Symptoms[k])
			}
			b.WriteString(suffixes[rng.Intn(len(suffixes))])

			out = append(out, Sample{
				Text:      strings.TrimSpace(b.String()),
				Disease:   d.Name,
				Specialty: d.Specialty,
			})
		}
	}
	return out
}

// WriteCSV writes samples with a symptoms,disease,specialty header.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"symptoms", "disease", "specialty"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range samples {
		if err := cw.Write([]string{s.Text, s.Disease, s.Specialty}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
