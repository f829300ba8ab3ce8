package embedding

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/relevance-engine/backend/internal/config"
)

// Trainer trains a skip-gram negative-sampling word embedding model from a
// token corpus plus a seed vocabulary. Train is an atomic, blocking call:
// it may parallelize internally across workers, but callers never observe
// partial results. With Workers set to 1 training is bit-for-bit
// reproducible for identical inputs.
type Trainer struct {
	cfg    config.TrainingConfig
	rule   RetentionRule
	Logger *logrus.Entry
}

func NewTrainer(cfg config.TrainingConfig, rule RetentionRule, logger *logrus.Entry) *Trainer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Negative < 0 {
		cfg.Negative = 0
	}
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	return &Trainer{cfg: cfg, rule: rule, Logger: logger}
}

// Train first installs the seed vocabulary into the model through a build
// pass governed by the trainer's retention rule, then runs the configured
// number of epochs over the corpus. Corpus tokens absent from the model
// vocabulary are skipped during training but still counted in the raw
// total. It returns the model together with the effective and raw word
// counts accumulated across all epochs; an effective count of 0 is a
// valid outcome for degenerate corpora, not an error.
func (t *Trainer) Train(corpus [][]string, seedVocabulary []string) (*Model, int, int) {
	model := t.buildVocab(seedVocabulary)

	// restrict each sentence to in-vocabulary word indices up front
	rawPerEpoch := 0
	effectivePerEpoch := 0
	sentences := make([][]int, 0, len(corpus))
	for _, sentence := range corpus {
		rawPerEpoch += len(sentence)
		indices := make([]int, 0, len(sentence))
		for _, token := range sentence {
			if i, ok := model.index[token]; ok {
				indices = append(indices, i)
			}
		}
		if len(indices) > 0 {
			sentences = append(sentences, indices)
		}
		effectivePerEpoch += len(indices)
	}

	raw := rawPerEpoch * t.cfg.Epochs
	effective := effectivePerEpoch * t.cfg.Epochs

	if effectivePerEpoch == 0 || model.Len() == 0 {
		model.EffectiveWords = 0
		model.RawWords = raw
		return model, 0, raw
	}

	state := &trainState{
		sampler:    newNoiseSampler(model.Counts),
		syn1:       zeroMatrix(model.Len(), model.Dim),
		totalWords: float64(effective),
	}

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		loss := t.runEpoch(model, state, sentences, epoch)
		if t.Logger != nil {
			t.Logger.Infof("Loss after epoch %d : %f", epoch, loss)
		}
	}

	model.EffectiveWords = effective
	model.RawWords = raw
	return model, effective, raw
}

// buildVocab runs the vocabulary build pass over the seed list. With the
// KeepAll rule every seed word is retained no matter how rare; vectors are
// initialized deterministically from the word itself, so two models seeded
// with the same word start from the same vector.
func (t *Trainer) buildVocab(seedVocabulary []string) *Model {
	model := newModel(t.cfg.VectorSize)

	counts := make(map[string]int)
	order := make([]string, 0, len(seedVocabulary))
	for _, word := range seedVocabulary {
		if word == "" {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	for _, word := range order {
		if !t.rule.Keep(counts[word], t.cfg.MinCount) {
			continue
		}
		model.addWord(word, counts[word], seedVector(word, t.cfg.Seed, t.cfg.VectorSize))
	}

	return model
}

// trainState is the shared mutable training state for one Train call. The
// output layer is updated hogwild-style across workers, like the reference
// implementations of skip-gram do.
type trainState struct {
	sampler    *noiseSampler
	syn1       [][]float64
	totalWords float64
	processed  int64
}

func (t *Trainer) runEpoch(model *Model, state *trainState, sentences [][]int, epoch int) float64 {
	workers := t.cfg.Workers
	if workers > len(sentences) {
		workers = len(sentences)
	}

	losses := make([]float64, workers)
	chunkSize := (len(sentences) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= len(sentences) {
			break
		}
		end := start + chunkSize
		if end > len(sentences) {
			end = len(sentences)
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(t.cfg.Seed + int64(epoch)*7919 + int64(w)*104729))
			scratch := make([]float64, model.Dim)
			var loss float64
			for _, sentence := range sentences[start:end] {
				loss += t.trainSentence(model, state, sentence, rng, scratch)
			}
			losses[w] = loss
		}(w, start, end)
	}
	wg.Wait()

	var total float64
	for _, l := range losses {
		total += l
	}
	return total
}

func (t *Trainer) trainSentence(model *Model, state *trainState, sentence []int, rng *rand.Rand, scratch []float64) float64 {
	var loss float64
	for pos, center := range sentence {
		done := atomic.AddInt64(&state.processed, 1)
		alpha := t.cfg.Alpha * (1 - float64(done)/state.totalWords)
		if alpha < t.cfg.MinAlpha {
			alpha = t.cfg.MinAlpha
		}

		// dynamic window, shrunk uniformly as in the reference trainers
		window := rng.Intn(t.cfg.Window) + 1
		for ctx := pos - window; ctx <= pos+window; ctx++ {
			if ctx < 0 || ctx >= len(sentence) || ctx == pos {
				continue
			}
			loss += t.trainPair(model, state, sentence[ctx], center, alpha, rng, scratch)
		}
	}
	return loss
}

// trainPair updates the input vector of the context word against the
// output vector of the center word with one positive and Negative noise
// samples; returns the log loss contribution.
func (t *Trainer) trainPair(model *Model, state *trainState, input, target int, alpha float64, rng *rand.Rand, scratch []float64) float64 {
	l1 := model.Vectors[input]
	for i := range scratch {
		scratch[i] = 0
	}

	var loss float64
	for d := 0; d <= t.cfg.Negative; d++ {
		sampled := target
		label := 1.0
		if d > 0 {
			sampled = state.sampler.sample(rng)
			if sampled == target {
				continue
			}
			label = 0.0
		}

		l2 := state.syn1[sampled]
		f := sigmoid(floats.Dot(l1, l2))
		g := (label - f) * alpha

		if label == 1.0 {
			loss -= math.Log(f + 1e-12)
		} else {
			loss -= math.Log(1 - f + 1e-12)
		}

		floats.AddScaled(scratch, g, l2)
		floats.AddScaled(l2, g, l1)
	}

	floats.Add(l1, scratch)
	return loss
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// seedVector derives a word's initial vector from a hash of the word and
// the configured seed. Identical words start from identical vectors in
// any model trained with the same seed and dimensionality.
func seedVector(word string, seed int64, dim int) []float64 {
	h := fnv.New64a()
	h.Write([]byte(word))
	rng := rand.New(rand.NewSource(int64(h.Sum64()) ^ seed))

	vector := make([]float64, dim)
	for i := range vector {
		vector[i] = (rng.Float64() - 0.5) / float64(dim)
	}
	return vector
}

// noiseSampler draws negative samples from the unigram distribution raised
// to the 3/4 power.
type noiseSampler struct {
	cumulative []float64
	total      float64
}

func newNoiseSampler(counts []int) *noiseSampler {
	cumulative := make([]float64, len(counts))
	var total float64
	for i, count := range counts {
		total += math.Pow(float64(count), 0.75)
		cumulative[i] = total
	}
	return &noiseSampler{cumulative: cumulative, total: total}
}

func (s *noiseSampler) sample(rng *rand.Rand) int {
	x := rng.Float64() * s.total
	i := sort.SearchFloat64s(s.cumulative, x)
	if i >= len(s.cumulative) {
		i = len(s.cumulative) - 1
	}
	return i
}

func zeroMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
