package phrases_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/relevance-engine/backend/internal/phrases"
)

func testLogger() *logrus.Entry {
	return logrus.New().WithField("test", "phrases")
}

func TestDetectMergesFrequentPairs(t *testing.T) {
	d := phrases.NewDetectorWithParams(2, 0.5, nil, testLogger())

	corpus := [][]string{
		{"new", "york", "trip"},
		{"new", "york", "visit"},
		{"new", "york", "walk"},
		{"words", "more"},
	}
	// pair (new, york): count 3, words new=3 york=3, 7 unique words
	// score = (3-2)*7/(3*3) = 0.78 > 0.5 -> merged
	out := d.Detect(corpus)

	assert.Equal(t, []string{"new_york", "trip"}, out[0])
	assert.Equal(t, []string{"new_york", "visit"}, out[1])
	assert.Equal(t, []string{"new_york", "walk"}, out[2])
	assert.Equal(t, []string{"words", "more"}, out[3])
}

func TestDetectRespectsMinCount(t *testing.T) {
	d := phrases.NewDetectorWithParams(2, 0.0, nil, testLogger())

	corpus := [][]string{{"rare", "pair", "filler", "filler"}}
	out := d.Detect(corpus)

	assert.Equal(t, []string{"rare", "pair", "filler", "filler"}, out[0])
}

func TestDetectRespectsThreshold(t *testing.T) {
	d := phrases.NewDetectorWithParams(2, 1000.0, nil, testLogger())

	corpus := [][]string{
		{"new", "york"},
		{"new", "york"},
		{"new", "york"},
	}
	out := d.Detect(corpus)

	assert.Equal(t, []string{"new", "york"}, out[0])
}

func TestDetectThresholdIsStrict(t *testing.T) {
	d := phrases.NewDetectorWithParams(1, 0.5, nil, testLogger())

	// pair (aaa, bbb): count 2, words aaa=2 bbb=2, 2 unique words
	// score = (2-1)*2/(2*2) = 0.5, equal to the threshold -> not merged
	corpus := [][]string{
		{"aaa", "bbb"},
		{"aaa", "bbb"},
	}
	out := d.Detect(corpus)

	assert.Equal(t, []string{"aaa", "bbb"}, out[0])
	assert.Equal(t, []string{"aaa", "bbb"}, out[1])
}

func TestDetectScalesByUniqueWords(t *testing.T) {
	d := phrases.NewDetectorWithParams(2, 1.0, nil, testLogger())

	// 5x (alpha, beta) plus 100 filler tokens: 3 unique words, so
	// score = (5-2)*3/(5*5) = 0.36 -> not merged. Scaling by the corpus
	// length instead would give (5-2)*110/25 = 13.2 and over-merge.
	corpus := make([][]string, 0, 6)
	for i := 0; i < 5; i++ {
		corpus = append(corpus, []string{"alpha", "beta"})
	}
	filler := make([]string, 100)
	for i := range filler {
		filler[i] = "filler"
	}
	corpus = append(corpus, filler)

	out := d.Detect(corpus)
	for i := 0; i < 5; i++ {
		assert.Equal(t, []string{"alpha", "beta"}, out[i])
	}
}

func TestDetectConnectorInsideCompound(t *testing.T) {
	d := phrases.NewDetectorWithParams(2, 0.25, []string{"of"}, testLogger())

	corpus := [][]string{
		{"state", "of", "art"},
		{"state", "of", "art"},
		{"state", "of", "art"},
	}
	// connector "of" does not break adjacency of (state, art), and it
	// counts toward the 3 unique words:
	// score = (3-2)*3/(3*3) = 0.33 > 0.25 -> merged
	out := d.Detect(corpus)

	for _, sentence := range out {
		assert.Equal(t, []string{"state_of_art"}, sentence)
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := phrases.NewDetectorWithParams(2, 1.0, nil, testLogger())

	corpus := [][]string{
		{"alpha", "beta", "gamma"},
		{"alpha", "beta", "delta"},
		{"alpha", "beta"},
	}

	first := d.Detect(corpus)
	second := d.Detect(corpus)

	assert.Equal(t, first, second)
}

func TestDetectorDefaults(t *testing.T) {
	d := phrases.NewDetector(testLogger())

	assert.Equal(t, phrases.DefaultMinCount, d.MinCount)
	assert.InDelta(t, phrases.DefaultThreshold, d.Threshold, 1e-12)
}
