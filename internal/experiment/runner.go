package experiment

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/relevance-engine/backend/internal/config"
	"github.com/relevance-engine/backend/internal/embedding"
	"github.com/relevance-engine/backend/internal/phrases"
	"github.com/relevance-engine/backend/internal/textproc"
	"github.com/relevance-engine/backend/internal/tracking"
	"github.com/relevance-engine/backend/internal/vocabulary"
)

// Runner trains the long-lived background model from a corpus file and a
// keyword file, and records the run with the tracking collaborator. If
// OutputPath is set the model blob is additionally written there, ready to
// be loaded by the scoring service.
type Runner struct {
	Training   config.TrainingConfig
	Tracker    *tracking.Client
	OutputPath string
	Logger     *logrus.Entry
}

func NewRunner(training config.TrainingConfig, tracker *tracking.Client, logger *logrus.Entry) *Runner {
	return &Runner{
		Training: training,
		Tracker:  tracker,
		Logger:   logger,
	}
}

// Run executes the full training pipeline and returns the artifact
// locator of the tracked model. The tracking server is health-checked
// before any training work; an unreachable server aborts the run rather
// than retrying. Input errors abort with no model persisted.
func (r *Runner) Run(ctx context.Context, corpusPath, vocabPath string) (string, error) {
	if err := r.Tracker.Health(ctx); err != nil {
		return "", fmt.Errorf("tracking health check failed: %w", err)
	}

	vocab, err := vocabulary.Load(vocabPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(corpusPath)
	if err != nil {
		return "", fmt.Errorf("failed to read corpus file: %w", err)
	}
	corpus := strings.TrimRight(string(data), " \t\n")

	rewriter := phrases.NewSubstringRewriter()
	normalizer := textproc.NewNormalizer(r.Logger)
	detector := phrases.NewDetector(r.Logger)

	text := rewriter.Rewrite(vocab, corpus)
	tokens := detector.Detect(normalizer.Tokenize(text))

	trainer := embedding.NewTrainer(r.Training, embedding.KeepAll, r.Logger)
	model, effective, raw := trainer.Train(tokens, vocab)
	if r.Logger != nil {
		r.Logger.Infof("Trained background model: %d effective / %d raw words", effective, raw)
	}

	modelPath, err := tempPath("model_artifact_")
	if err != nil {
		return "", err
	}
	defer os.Remove(modelPath)
	vectorsPath, err := tempPath("word_embeddings_")
	if err != nil {
		return "", err
	}
	defer os.Remove(vectorsPath)

	if err := embedding.Save(model, modelPath); err != nil {
		return "", err
	}
	if err := embedding.SaveVectors(model, vectorsPath); err != nil {
		return "", err
	}

	if r.OutputPath != "" {
		if err := embedding.Save(model, r.OutputPath); err != nil {
			return "", err
		}
		if r.Logger != nil {
			r.Logger.Infof("Saved background model to %s", r.OutputPath)
		}
	}

	runID, err := r.Tracker.CreateRun(ctx)
	if err != nil {
		return "", err
	}

	params := []struct{ key, value string }{
		{"vector_size", strconv.Itoa(r.Training.VectorSize)},
		{"window", strconv.Itoa(r.Training.Window)},
		{"min_count", strconv.Itoa(r.Training.MinCount)},
		{"workers", strconv.Itoa(r.Training.Workers)},
		{"trained_word_count", strconv.Itoa(effective)},
		{"raw_word_count", strconv.Itoa(raw)},
	}
	for _, p := range params {
		if err := r.Tracker.LogParam(ctx, runID, p.key, p.value); err != nil {
			return "", err
		}
	}
	if err := r.Tracker.SetTag(ctx, runID, "go_version", runtime.Version()); err != nil {
		return "", err
	}
	if err := r.Tracker.SetTag(ctx, runID, "retention_rule", embedding.KeepAll.String()); err != nil {
		return "", err
	}

	artifacts := []struct{ local, dir string }{
		{vocabPath, "domain_keywords"},
		{corpusPath, "text_corpus"},
		{vectorsPath, "word_embeddings"},
		{modelPath, "model"},
	}
	for _, a := range artifacts {
		if err := r.Tracker.LogArtifact(ctx, runID, a.local, a.dir); err != nil {
			return "", err
		}
	}

	uri := r.Tracker.ArtifactURI(runID, "model")
	if r.Logger != nil {
		r.Logger.Infof("Tracked model object-storage path: %s", uri)
	}
	return uri, nil
}

func tempPath(prefix string) (string, error) {
	file, err := os.CreateTemp("", prefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}
	path := file.Name()
	file.Close()
	return path, nil
}
