package phrases

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultConnectorWords are English function words allowed to sit inside a
// compound without breaking it ("state of the art" -> state_of_the_art).
var DefaultConnectorWords = []string{
	"a", "an", "the",
	"and", "or", "but",
	"of", "in", "on", "at", "by", "for", "to", "with", "without",
	"from", "into", "over", "under",
	"is", "are", "was", "were", "be",
	"not", "no",
	"so", "as", "than",
}

const (
	DefaultMinCount  = 5
	DefaultThreshold = 10.0
)

// Detector merges frequently co-occurring adjacent token pairs into single
// underscore-joined compound tokens, based on corpus-wide statistics.
type Detector struct {
	MinCount   int
	Threshold  float64
	connectors map[string]bool
	Logger     *logrus.Entry
}

func NewDetector(logger *logrus.Entry) *Detector {
	return NewDetectorWithParams(DefaultMinCount, DefaultThreshold, DefaultConnectorWords, logger)
}

func NewDetectorWithParams(minCount int, threshold float64, connectorWords []string, logger *logrus.Entry) *Detector {
	connectors := make(map[string]bool, len(connectorWords))
	for _, w := range connectorWords {
		connectors[w] = true
	}
	return &Detector{
		MinCount:   minCount,
		Threshold:  threshold,
		connectors: connectors,
		Logger:     logger,
	}
}

type pair struct {
	a, b string
}

// Detect counts adjacent token pairs across the whole corpus (connector
// words may sit between the two members without breaking adjacency) and
// rewrites every accepted pair into one compound token, in every sentence.
// The association score for a candidate pair is
//
//	(pairCount - minCount) * uniqueWords / (countA * countB)
//
// where uniqueWords is the vocabulary size of the corpus, connector words
// included. A pair is merged when pairCount >= minCount and the score
// strictly exceeds the threshold. A single pass only: compounds produced
// here are not fed back for longer n-gram discovery.
func (d *Detector) Detect(corpus [][]string) [][]string {
	wordCounts := make(map[string]int)
	pairCounts := make(map[pair]int)
	totalWords := 0

	for _, sentence := range corpus {
		prev := ""
		for _, token := range sentence {
			// connectors count toward the vocabulary statistics but never
			// form pair members
			wordCounts[token]++
			totalWords++
			if d.connectors[token] {
				continue
			}
			if prev != "" {
				pairCounts[pair{prev, token}]++
			}
			prev = token
		}
	}

	uniqueWords := float64(len(wordCounts))
	accepted := make(map[pair]bool)
	for p, count := range pairCounts {
		if count < d.MinCount {
			continue
		}
		score := float64(count-d.MinCount) * uniqueWords /
			(float64(wordCounts[p.a]) * float64(wordCounts[p.b]))
		if score > d.Threshold {
			accepted[p] = true
		}
	}

	if d.Logger != nil && len(accepted) > 0 {
		d.Logger.Infof("Detected %d collocations in corpus of %d words", len(accepted), totalWords)
	}

	result := make([][]string, len(corpus))
	for i, sentence := range corpus {
		result[i] = d.mergeSentence(sentence, accepted)
	}
	return result
}

// mergeSentence greedily rewrites accepted pairs, carrying any connector
// words between the two members into the compound.
func (d *Detector) mergeSentence(sentence []string, accepted map[pair]bool) []string {
	out := make([]string, 0, len(sentence))

	i := 0
	for i < len(sentence) {
		if d.connectors[sentence[i]] {
			out = append(out, sentence[i])
			i++
			continue
		}

		// span from this word over any connectors to the next real word
		j := i + 1
		for j < len(sentence) && d.connectors[sentence[j]] {
			j++
		}

		if j < len(sentence) && accepted[pair{sentence[i], sentence[j]}] {
			out = append(out, strings.Join(sentence[i:j+1], "_"))
			i = j + 1
			continue
		}

		out = append(out, sentence[i])
		i++
	}

	return out
}
