package scoring

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/relevance-engine/backend/internal/embedding"
	"github.com/relevance-engine/backend/internal/phrases"
	"github.com/relevance-engine/backend/internal/textproc"
)

// Phase identifies the stage of a scoring call that failed. Normalization
// never fails; training, matching and vector lookup may.
type Phase string

const (
	PhaseTraining Phase = "training"
	PhaseMatching Phase = "matching"
	PhaseLookup   Phase = "lookup"
)

// Error is the typed failure returned by Score.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scoring %s failed: %v", e.Phase, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Scorer computes a domain-relevance score between a document and a fixed
// keyword vocabulary. The vocabulary and background model are injected at
// construction, owned by the caller, and treated as read-only: a single
// Scorer may serve concurrent requests without locking. Everything else
// (document model, token sequences, similarity matrix) lives and dies
// within one Score call.
type Scorer struct {
	vocabulary []string
	background *embedding.Model
	rewriter   phrases.Rewriter
	detector   *phrases.Detector
	normalizer *textproc.Normalizer
	trainer    *embedding.Trainer
	Logger     *logrus.Entry
}

func NewScorer(vocab []string, background *embedding.Model, trainer *embedding.Trainer, logger *logrus.Entry) *Scorer {
	return &Scorer{
		vocabulary: vocab,
		background: background,
		rewriter:   phrases.NewSubstringRewriter(),
		detector:   phrases.NewDetector(logger),
		normalizer: textproc.NewNormalizer(logger),
		trainer:    trainer,
		Logger:     logger,
	}
}

// Score rewrites vocabulary phrases into the document, tokenizes, merges
// collocations, trains a fresh document model, and reduces the similarity
// matrix between background and document vectors to one float.
//
// Degenerate inputs (empty document, no effectively trained words, no
// vocabulary matches) score 0.0 by definition. A vocabulary term or
// matched word missing its vector is a fatal lookup error for the call.
func (s *Scorer) Score(documentText string) (float64, error) {
	text := s.rewriter.Rewrite(s.vocabulary, documentText)
	corpus := s.detector.Detect(s.normalizer.Tokenize(text))

	documentModel, effective, raw := s.trainer.Train(corpus, s.vocabulary)
	if s.Logger != nil {
		s.Logger.Infof("Training on %d total raw words", raw)
		s.Logger.Infof("Effective words : %d", effective)
	}
	if effective == 0 {
		return 0.0, nil
	}

	// duplicates are preserved: a keyword matched three times contributes
	// three columns
	var matched []string
	for _, token := range corpus[0] {
		for _, keyword := range s.vocabulary {
			if token == keyword {
				matched = append(matched, token)
			}
		}
	}
	if s.Logger != nil {
		s.Logger.Infof("Matched word count from vocabulary: %d", len(matched))
		s.Logger.Infof("Matched words in vocabulary: %v", matched)
	}
	if len(matched) == 0 {
		return 0.0, nil
	}

	matrix, err := s.similarityMatrix(documentModel, matched)
	if err != nil {
		return 0.0, err
	}

	rows := len(s.vocabulary)
	column := make([]float64, rows)
	maxima := make([]float64, len(matched))
	means := make([]float64, len(matched))
	for j := range matched {
		mat.Col(column, j, matrix)
		maxima[j] = floats.Max(column)
		means[j] = floats.Sum(column) / float64(rows)
	}

	score := floats.Sum(maxima) / float64(len(maxima))
	if s.Logger != nil {
		s.Logger.Infof("Mean of the max with vocabulary %f", score)
		s.Logger.Infof("Mean of the mean with vocabulary %f", floats.Sum(means)/float64(len(means)))
	}
	return score, nil
}

// similarityMatrix builds the (vocabulary term, matched word) matrix of
// cosine similarities between background and document vectors. Lookups
// are guarded: a missing vector propagates as a lookup error instead of a
// silent zero cell.
func (s *Scorer) similarityMatrix(documentModel *embedding.Model, matched []string) (*mat.Dense, error) {
	matrix := mat.NewDense(len(s.vocabulary), len(matched), nil)

	for i, term := range s.vocabulary {
		background, err := s.background.Vector(term)
		if err != nil {
			return nil, &Error{Phase: PhaseLookup, Err: err}
		}
		for j, word := range matched {
			document, err := documentModel.Vector(word)
			if err != nil {
				return nil, &Error{Phase: PhaseLookup, Err: err}
			}
			matrix.Set(i, j, embedding.Cosine(background, document))
		}
	}

	return matrix, nil
}
