package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relevance-engine/backend/internal/config"
	"github.com/relevance-engine/backend/internal/embedding"
	"github.com/relevance-engine/backend/internal/experiment"
	"github.com/relevance-engine/backend/internal/ingestion"
	"github.com/relevance-engine/backend/internal/tracking"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "trainer")

	root := &cobra.Command{
		Use:   "trainer",
		Short: "Background model training and corpus preparation",
	}
	root.AddCommand(trainCmd(entry), corpusCmd(entry), cleanCmd(entry), similarityCmd(entry))

	if err := root.Execute(); err != nil {
		entry.Error(err)
		os.Exit(1)
	}
}

func trainCmd(logger *logrus.Entry) *cobra.Command {
	var (
		corpusPath string
		vocabPath  string
		configPath string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the background model and record the run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			training := cfg.Training
			if configPath != "" {
				var err error
				training, err = config.LoadTrainingFile(configPath, training)
				if err != nil {
					return err
				}
			}
			if vocabPath == "" {
				vocabPath = cfg.Model.VocabularyPath
			}

			tracker := tracking.NewClient(cfg.Tracking, logger)
			runner := experiment.NewRunner(training, tracker, logger)
			runner.OutputPath = outputPath

			uri, err := runner.Run(context.Background(), corpusPath, vocabPath)
			if err != nil {
				return err
			}
			logger.Infof("Model artifact: %s", uri)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "path to the text corpus file")
	cmd.Flags().StringVar(&vocabPath, "keywords", "", "path to the domain keywords file")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML hyperparameter file")
	cmd.Flags().StringVar(&outputPath, "output", "", "optional local path for the trained model blob")
	cmd.MarkFlagRequired("corpus")
	return cmd
}

func similarityCmd(logger *logrus.Entry) *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "similarity <word1> <word2>",
		Short: "Print the cosine similarity of two words in a trained model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelPath == "" {
				modelPath = config.Load().Model.BackgroundModelPath
			}
			model, err := embedding.Load(modelPath)
			if err != nil {
				return err
			}
			sim := embedding.EvaluateSimilarity(model, args[0], args[1], logger)
			logger.Infof("Similarity between %q and %q: %f", args[0], args[1], sim)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model blob path (defaults to BACKGROUND_MODEL_PATH)")
	return cmd
}

func corpusCmd(logger *logrus.Entry) *cobra.Command {
	var (
		inputDir string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Concatenate a directory of text files into one corpus file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			converter := ingestion.NewConverter(cfg.Ingestion.Workers, logger)
			return converter.CreateCorpus(inputDir, outPath)
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "directory of extracted text files")
	cmd.Flags().StringVar(&outPath, "output", "", "corpus file to write")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

func cleanCmd(logger *logrus.Entry) *cobra.Command {
	var (
		inputDir  string
		outputDir string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Bulk-clean a directory of text files with the worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if workers <= 0 {
				workers = cfg.Ingestion.Workers
			}
			converter := ingestion.NewConverter(workers, logger)
			return converter.CleanDirectory(inputDir, outputDir)
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "directory of raw text files")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory for cleaned text files")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (defaults to INGESTION_WORKERS)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}
