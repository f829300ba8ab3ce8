package embedding_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relevance-engine/backend/internal/config"
	"github.com/relevance-engine/backend/internal/embedding"
)

func testLogger() *logrus.Entry {
	return logrus.New().WithField("test", "embedding")
}

func testTrainingConfig() config.TrainingConfig {
	return config.TrainingConfig{
		VectorSize: 20,
		Window:     5,
		MinCount:   4,
		Epochs:     3,
		Negative:   5,
		Workers:    1,
		Alpha:      0.025,
		MinAlpha:   0.0001,
		Seed:       1,
	}
}

func TestTrainEmptyCorpus(t *testing.T) {
	trainer := embedding.NewTrainer(testTrainingConfig(), embedding.KeepAll, testLogger())

	model, effective, raw := trainer.Train(nil, []string{"alpha", "beta"})

	assert.Equal(t, 0, effective)
	assert.Equal(t, 0, raw)
	// seeding still installs a vector for every vocabulary term
	assert.True(t, model.HasWord("alpha"))
	assert.True(t, model.HasWord("beta"))
}

func TestTrainWordCounts(t *testing.T) {
	trainer := embedding.NewTrainer(testTrainingConfig(), embedding.KeepAll, testLogger())

	corpus := [][]string{{"alpha", "beta", "gamma", "alpha"}}
	_, effective, raw := trainer.Train(corpus, []string{"alpha", "beta"})

	// 3 in-vocabulary occurrences and 4 raw tokens per epoch, 3 epochs
	assert.Equal(t, 9, effective)
	assert.Equal(t, 12, raw)
}

func TestTrainSkipsOutOfVocabularyWords(t *testing.T) {
	trainer := embedding.NewTrainer(testTrainingConfig(), embedding.KeepAll, testLogger())

	corpus := [][]string{{"alpha", "beta", "gamma"}}
	model, _, _ := trainer.Train(corpus, []string{"alpha", "beta"})

	assert.False(t, model.HasWord("gamma"))
	_, err := model.Vector("gamma")
	var lookupErr *embedding.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "gamma", lookupErr.Word)
}

func TestTrainNonPositiveWindow(t *testing.T) {
	cfg := testTrainingConfig()
	cfg.Window = 0
	trainer := embedding.NewTrainer(cfg, embedding.KeepAll, testLogger())

	corpus := [][]string{{"alpha", "beta", "alpha", "beta"}}
	_, effective, raw := trainer.Train(corpus, []string{"alpha", "beta"})

	// the window floors to 1 instead of panicking mid-epoch
	assert.Equal(t, 12, effective)
	assert.Equal(t, 12, raw)
}

func TestTrainVectorDimensions(t *testing.T) {
	trainer := embedding.NewTrainer(testTrainingConfig(), embedding.KeepAll, testLogger())

	corpus := [][]string{{"alpha", "beta", "alpha", "beta", "alpha"}}
	model, _, _ := trainer.Train(corpus, []string{"alpha", "beta"})

	vec, err := model.Vector("alpha")
	require.NoError(t, err)
	assert.Len(t, vec, 20)
}

func TestTrainDeterministicWithSingleWorker(t *testing.T) {
	corpus := [][]string{{"alpha", "beta", "alpha", "gamma", "beta", "alpha"}}
	vocab := []string{"alpha", "beta", "gamma"}

	first, _, _ := embedding.NewTrainer(testTrainingConfig(), embedding.KeepAll, testLogger()).Train(corpus, vocab)
	second, _, _ := embedding.NewTrainer(testTrainingConfig(), embedding.KeepAll, testLogger()).Train(corpus, vocab)

	assert.Equal(t, first.Vectors, second.Vectors)
}

func TestSeededVectorsIdenticalAcrossModels(t *testing.T) {
	// two untrained models seeded with the same word start from the same
	// vector, which keeps cross-model cosine well defined
	trainer := embedding.NewTrainer(testTrainingConfig(), embedding.KeepAll, testLogger())

	a, _, _ := trainer.Train(nil, []string{"alpha"})
	b, _, _ := trainer.Train(nil, []string{"alpha", "beta"})

	va, err := a.Vector("alpha")
	require.NoError(t, err)
	vb, err := b.Vector("alpha")
	require.NoError(t, err)
	assert.Equal(t, va, vb)
}

func TestRetentionRules(t *testing.T) {
	assert.True(t, embedding.KeepAll.Keep(1, 4))
	assert.False(t, embedding.KeepAboveMinCount.Keep(1, 4))
	assert.True(t, embedding.KeepAboveMinCount.Keep(5, 4))
}

func TestTrainWithFrequencyRulePrunes(t *testing.T) {
	cfg := testTrainingConfig()
	cfg.MinCount = 2
	trainer := embedding.NewTrainer(cfg, embedding.KeepAboveMinCount, testLogger())

	model, _, _ := trainer.Train(nil, []string{"alpha", "alpha", "beta"})

	assert.True(t, model.HasWord("alpha"))
	assert.False(t, model.HasWord("beta"))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, embedding.Cosine([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 0.0, embedding.Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.InDelta(t, -1.0, embedding.Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-12)
	assert.InDelta(t, 0.0, embedding.Cosine([]float64{0, 0}, []float64{1, 1}), 1e-12)
}
