package detector

import (
	"math"
	"strings"
)

// TFIDFScorer scores text similarity as the cosine of smooth-idf TF-IDF
// vectors built over the two documents. Deterministic and allocation-light;
// suitable for the short vendor/number/amount surrogates used by the
// duplicate detector.
type TFIDFScorer struct{}

// NewTFIDFScorer creates a TF-IDF similarity scorer.
func NewTFIDFScorer() *TFIDFScorer {
	return &TFIDFScorer{}
}

// Score returns the cosine similarity of a and b in [0, 1]. Empty documents
// score 0.
func (s *TFIDFScorer) Score(a, b string) float64 {
	tfA := termFrequencies(a)
	tfB := termFrequencies(b)
	if len(tfA) == 0 || len(tfB) == 0 {
		return 0
	}

	// Smooth idf over the two-document corpus: ln((1+n)/(1+df)) + 1.
	idf := func(term string) float64 {
		df := 0.0
		if _, ok := tfA[term]; ok {
			df++
		}
		if _, ok := tfB[term]; ok {
			df++
		}
		return math.Log(3.0/(1.0+df)) + 1.0
	}

	var dot, normA, normB float64
	for term, fa := range tfA {
		wa := fa * idf(term)
		normA += wa * wa
		if fb, ok := tfB[term]; ok {
			dot += wa * fb * idf(term)
		}
	}
	for term, fb := range tfB {
		wb := fb * idf(term)
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func termFrequencies(doc string) map[string]float64 {
	tf := make(map[string]float64)
	for _, term := range strings.Fields(strings.ToLower(doc)) {
		tf[term]++
	}
	return tf
}
