package embedding

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LookupError reports a vector lookup for a word absent from a model's
// vocabulary. Callers must check HasWord before Vector, or handle this
// error; a missing vector is never silently zero-filled.
type LookupError struct {
	Word string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("word %q has no vector in model", e.Word)
}

// Model maps words to fixed-length real vectors, plus the training
// metadata reported by the trainer. A Model is immutable once training
// finishes and may be read concurrently without locking.
type Model struct {
	Dim     int
	Words   []string
	Vectors [][]float64
	Counts  []int

	EffectiveWords int
	RawWords       int

	index map[string]int
}

func newModel(dim int) *Model {
	return &Model{
		Dim:   dim,
		index: make(map[string]int),
	}
}

func (m *Model) addWord(word string, count int, vector []float64) {
	m.index[word] = len(m.Words)
	m.Words = append(m.Words, word)
	m.Counts = append(m.Counts, count)
	m.Vectors = append(m.Vectors, vector)
}

// Len returns the vocabulary size of the model.
func (m *Model) Len() int {
	return len(m.Words)
}

// HasWord reports whether the model holds a vector for word.
func (m *Model) HasWord(word string) bool {
	_, ok := m.index[word]
	return ok
}

// Vector returns the vector for word, or a LookupError if the word is not
// in the model's vocabulary.
func (m *Model) Vector(word string) ([]float64, error) {
	i, ok := m.index[word]
	if !ok {
		return nil, &LookupError{Word: word}
	}
	return m.Vectors[i], nil
}

// Cosine returns the cosine similarity of two vectors. A zero-norm
// operand yields 0.
func Cosine(a, b []float64) float64 {
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
