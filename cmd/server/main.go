package main

import (
	"github.com/sirupsen/logrus"

	"github.com/relevance-engine/backend/internal/api"
	"github.com/relevance-engine/backend/internal/config"
	"github.com/relevance-engine/backend/internal/embedding"
	"github.com/relevance-engine/backend/internal/scoring"
	"github.com/relevance-engine/backend/internal/vocabulary"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "scoring-api")

	entry.Info("Starting Relevance Scoring API Service")

	// 1. Config
	cfg := config.Load()

	// 2. Vocabulary and background model: loaded once, read-only for the
	// process lifetime, shared by every scoring request.
	vocab, err := vocabulary.Load(cfg.Model.VocabularyPath)
	if err != nil {
		entry.Fatalf("Failed to load vocabulary: %v", err)
	}
	entry.Infof("Loaded %d vocabulary terms from %s", len(vocab), cfg.Model.VocabularyPath)

	background, err := embedding.Load(cfg.Model.BackgroundModelPath)
	if err != nil {
		entry.Fatalf("Failed to load background model: %v", err)
	}
	entry.Infof("Loaded background model: %d words, %d dimensions", background.Len(), background.Dim)

	// 3. Scorer: trains a fresh document model per request
	trainer := embedding.NewTrainer(cfg.Training, embedding.KeepAll, entry)
	scorer := scoring.NewScorer(vocab, background, trainer, entry)

	// 4. API Server
	server := api.NewServer(scorer, entry)

	entry.Infof("Relevance Scoring API ready on %s", cfg.Server.Addr)
	if err := server.Start(cfg.Server.Addr); err != nil {
		entry.Fatal(err)
	}
}
