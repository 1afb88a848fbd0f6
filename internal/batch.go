package internal

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rm-hull/compat-blur/internal/png"
)

// ErrNoImages is returned by NewProcessor when the input directory holds no
// decodable images.
var ErrNoImages = errors.New("no images to process")

var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Processor runs an image pipeline over every image in a directory using a
// fixed pool of workers. Stages must be safe for concurrent use; each blur
// call opens its own primitive session so workers never share one.
type Processor struct {
	startTime time.Time
	endTime   time.Time
	inputDir  string
	outputDir string
	poolSize  int
	jobs      chan string
	results   chan error
	files     []string
	stages    []png.PipelineStage
}

func NewProcessor(inputDir, outputDir string, poolSize int, stages []png.PipelineStage) (*Processor, error) {
	if poolSize < 1 {
		return nil, errors.New("pool size must be at least 1")
	}
	startTime := time.Now()

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", inputDir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		files = append(files, filepath.Join(inputDir, entry.Name()))
	}

	log.Printf("Directory %s contains %d images", inputDir, len(files))
	if len(files) == 0 {
		return nil, ErrNoImages
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Processor{
		startTime: startTime,
		inputDir:  inputDir,
		outputDir: outputDir,
		poolSize:  poolSize,
		jobs:      make(chan string),
		results:   make(chan error),
		files:     files,
		stages:    stages,
	}, nil
}

// DispatchJobs sends every file to the jobs channel for processing by workers.
func (p *Processor) DispatchJobs() {
	go func() {
		for _, file := range p.files {
			p.jobs <- file
		}
		close(p.jobs)
	}()
}

func (p *Processor) StartWorkers() {
	log.Printf("Starting blur workers with pool size: %d", p.poolSize)

	for i := range p.poolSize {
		go p.worker(i)
	}
}

func (p *Processor) worker(i int) {
	for file := range p.jobs {
		p.results <- p.processFile(file)
	}
	log.Printf("Worker %d finished", i)
}

// Run starts the workers, dispatches every file and waits for the results.
func (p *Processor) Run() []error {
	p.StartWorkers()
	p.DispatchJobs()
	return p.Wait()
}

// OutputPath is where the processed image for file is written.
func (p *Processor) OutputPath(file string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return filepath.Join(p.outputDir, base+".png")
}

func (p *Processor) processFile(file string) error {
	filename := p.OutputPath(file)

	// if the output already exists, skip processing
	if _, err := os.Stat(filename); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	inFile, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer func() {
		_ = inFile.Close()
	}()

	img, err := png.NewImageFromReader(inFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	if err := img.Pipeline(p.stages...); err != nil {
		return fmt.Errorf("failed to process image pipeline for %s: %w", file, err)
	}

	tmpFile, err := os.CreateTemp(p.outputDir, "blur-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if err := img.Write(tmpFile); err != nil {
		return fmt.Errorf("failed to write processed image to temporary file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false // Successfully renamed, don't delete
	return nil
}

func (p *Processor) Wait() []error {
	waitFor := len(p.files)
	log.Printf("Waiting for %d images to be processed", waitFor)

	errors := make([]error, 0, 10)
	for range waitFor {
		err := <-p.results
		if err != nil {
			errors = append(errors, err)
		}
	}
	p.endTime = time.Now()
	elapsed := p.endTime.Sub(p.startTime)
	log.Printf("All images processed in %s (errors=%d)", elapsed, len(errors))
	return errors
}
