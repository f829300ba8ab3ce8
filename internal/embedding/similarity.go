package embedding

import (
	"github.com/sirupsen/logrus"
)

// EvaluateSimilarity returns the cosine similarity between two words in
// the model. A word absent from the model logs a warning and yields 0.0
// instead of failing; this is the lenient word-pair surface, as opposed to
// the strict matrix lookups done by the scorer.
func EvaluateSimilarity(model *Model, word1, word2 string, logger *logrus.Entry) float64 {
	similarity := 0.0

	v1, err1 := model.Vector(word1)
	v2, err2 := model.Vector(word2)
	if err1 != nil || err2 != nil {
		if logger != nil {
			logger.Warn("word not present")
		}
	} else {
		similarity = Cosine(v1, v2)
	}

	if logger != nil {
		logger.Infof("The similarity between these two words %s,%s is: %f", word1, word2, similarity)
	}
	return similarity
}
