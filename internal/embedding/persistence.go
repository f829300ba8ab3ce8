package embedding

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"strconv"
)

// persistedModel is the on-disk shape of a Model. The format is an opaque
// gob blob; only this package reads or writes it.
type persistedModel struct {
	Dim            int
	Words          []string
	Vectors        [][]float64
	Counts         []int
	EffectiveWords int
	RawWords       int
}

// Save writes the model to path. Errors (permissions, missing directories)
// are returned to the caller, never swallowed; no partial blob is left
// valid on failure since Load re-validates the decoded contents.
func Save(model *Model, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer file.Close()

	p := persistedModel{
		Dim:            model.Dim,
		Words:          model.Words,
		Vectors:        model.Vectors,
		Counts:         model.Counts,
		EffectiveWords: model.EffectiveWords,
		RawWords:       model.RawWords,
	}
	if err := gob.NewEncoder(file).Encode(&p); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// Load reads a model previously written by Save. A failed load is fatal
// for the request that needed the model; callers must not proceed with a
// partially initialized result.
func Load(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	var p persistedModel
	if err := gob.NewDecoder(file).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if p.Dim <= 0 || len(p.Words) != len(p.Vectors) || len(p.Words) != len(p.Counts) {
		return nil, fmt.Errorf("model file %s is corrupt", path)
	}

	model := newModel(p.Dim)
	for i, word := range p.Words {
		model.addWord(word, p.Counts[i], p.Vectors[i])
	}
	model.EffectiveWords = p.EffectiveWords
	model.RawWords = p.RawWords
	return model, nil
}

// SaveVectors writes the raw word -> vector table in a plain text format
// (header line "count dim", then one word and its components per line).
// Meant for artifact inspection, not for reloading.
func SaveVectors(model *Model, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create vector file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "%d %d\n", model.Len(), model.Dim)
	for i, word := range model.Words {
		w.WriteString(word)
		for _, v := range model.Vectors[i] {
			w.WriteByte(' ')
			w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write vector file: %w", err)
	}
	return nil
}
