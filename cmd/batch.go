package cmd

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rm-hull/compat-blur/internal"
)

// Batch processes every image in inputDir once.
func Batch(inputDir, outputDir string, poolSize int, engineOpts EngineOptions, opts PipelineOptions) error {
	_, renderer, err := engineOpts.Build(nil)
	if err != nil {
		return err
	}

	stages, err := opts.Stages(renderer, false)
	if err != nil {
		return err
	}

	processor, err := internal.NewProcessor(inputDir, outputDir, poolSize, stages)
	if err != nil {
		return err
	}

	if errs := processor.Run(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Watch re-runs the batch every interval until interrupted. Images already
// present in outputDir are skipped.
func Watch(inputDir, outputDir string, poolSize int, interval time.Duration, engineOpts EngineOptions, opts PipelineOptions) error {
	_, renderer, err := engineOpts.Build(nil)
	if err != nil {
		return err
	}

	stages, err := opts.Stages(renderer, false)
	if err != nil {
		return err
	}

	sched, err := internal.NewScheduler(interval, internal.BatchTask(inputDir, outputDir, poolSize, stages))
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down watcher")
	return sched.Shutdown()
}
