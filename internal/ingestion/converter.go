package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/relevance-engine/backend/internal/textproc"
)

// Converter prepares extracted text files for training: bulk cleaning with
// a fixed-size worker pool and concatenation into a single corpus file.
// Workers operate on independent files with no shared mutable state.
type Converter struct {
	Workers    int
	Logger     *logrus.Entry
	normalizer *textproc.Normalizer
}

func NewConverter(workers int, logger *logrus.Entry) *Converter {
	if workers < 1 {
		workers = 1
	}
	return &Converter{
		Workers:    workers,
		Logger:     logger,
		normalizer: textproc.NewNormalizer(logger),
	}
}

// CleanDirectory applies the coarse cleaning pass to every *.txt file of
// inputDir, writing each result under the same name in outputDir. Files
// that fail are logged and skipped; the first error is returned after the
// whole directory has been attempted.
func (c *Converter) CleanDirectory(inputDir, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(inputDir, "*.txt"))
	if err != nil {
		return fmt.Errorf("failed to list input directory: %w", err)
	}
	sort.Strings(files)

	jobs := make(chan string)
	errs := make([]error, c.Workers)

	var wg sync.WaitGroup
	for w := 0; w < c.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for path := range jobs {
				if err := c.cleanFile(path, outputDir); err != nil {
					if c.Logger != nil {
						c.Logger.Errorf("Failed to convert %s: %v", path, err)
					}
					if errs[w] == nil {
						errs[w] = err
					}
				}
			}
		}(w)
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	if c.Logger != nil {
		c.Logger.Infof("Converted %d text files into %s", len(files), outputDir)
	}
	return nil
}

func (c *Converter) cleanFile(path, outputDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	cleaned := c.normalizer.Clean(string(data))

	outPath := filepath.Join(outputDir, filepath.Base(path))
	if err := os.WriteFile(outPath, []byte(cleaned), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}

// CreateCorpus concatenates every *.txt file of inputDir, in name order,
// into one corpus file at outPath.
func (c *Converter) CreateCorpus(inputDir, outPath string) error {
	files, err := filepath.Glob(filepath.Join(inputDir, "*.txt"))
	if err != nil {
		return fmt.Errorf("failed to list input directory: %w", err)
	}
	sort.Strings(files)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create corpus file: %w", err)
	}
	defer out.Close()

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("failed to write corpus file: %w", err)
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			if _, err := out.Write([]byte{'\n'}); err != nil {
				return fmt.Errorf("failed to write corpus file: %w", err)
			}
		}
	}

	if c.Logger != nil {
		c.Logger.Infof("Generated corpus in: %s", outPath)
	}
	return nil
}
