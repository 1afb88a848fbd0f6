package internal

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rm-hull/compat-blur/internal/png"
)

// BatchTask returns a job that blurs every new image in inputDir into
// outputDir. An empty inbox is not an error.
func BatchTask(inputDir, outputDir string, poolSize int, stages []png.PipelineStage) func() error {
	return func() error {
		processor, err := NewProcessor(inputDir, outputDir, poolSize, stages)
		if errors.Is(err, ErrNoImages) {
			return nil
		}
		if err != nil {
			return err
		}

		if errs := processor.Run(); len(errs) > 0 {
			log.Printf("Errors occurred: %v", errs)
			return errors.Join(errs...)
		}
		return nil
	}
}

// NewScheduler runs task once, then again every interval until the returned
// scheduler is shut down.
func NewScheduler(interval time.Duration, task func() error) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", interval)
	}

	if err := task(); err != nil {
		return nil, fmt.Errorf("initial run of job failed: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := task(); err != nil {
				log.Printf("Scheduled blur run failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	log.Printf("Watching for new images every %s", interval)
	scheduler.Start()
	return scheduler, nil
}
