package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	scene    string
	width    int
	height   int
	workers  int
	passes   int
	exposure float64 // 0 = scene default
	help     bool
}

func parseOptions(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.scene, "scene", "default", "Scene to render (see -help)")
	fs.IntVar(&opts.width, "width", 320, "Image width in pixels")
	fs.IntVar(&opts.height, "height", 240, "Image height in pixels")
	fs.IntVar(&opts.workers, "workers", 0, "Number of render workers (0 = CPU count)")
	fs.IntVar(&opts.passes, "passes", 16, "Number of passes to accumulate")
	fs.Float64Var(&opts.exposure, "exposure", 0, "Display exposure (0 = scene default)")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.help {
		return opts, nil
	}
	if opts.width <= 0 || opts.height <= 0 {
		return opts, fmt.Errorf("invalid image size %dx%d", opts.width, opts.height)
	}
	if opts.passes <= 0 {
		return opts, fmt.Errorf("passes must be positive, got %d", opts.passes)
	}
	if opts.workers < 0 {
		return opts, fmt.Errorf("workers must not be negative, got %d", opts.workers)
	}
	if opts.exposure < 0 {
		return opts, fmt.Errorf("exposure must not be negative, got %g", opts.exposure)
	}
	return opts, nil
}

func printHelp(output io.Writer) {
	fmt.Fprintln(output, "Progressive Path Tracer")
	fmt.Fprintln(output, "Usage: pathtracer [options]")
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Options: -scene -width -height -workers -passes -exposure -help")
	fmt.Fprintln(output)
	fmt.Fprintln(output, "Available scenes:")
	for _, info := range scene.List() {
		fmt.Fprintf(output, "  %-15s %s\n", info.ID, info.Description)
	}
}

// run renders the requested passes and reports progress to output
func run(ctx context.Context, args []string, output io.Writer) error {
	opts, err := parseOptions(args, output)
	if err != nil {
		return err
	}
	if opts.help {
		printHelp(output)
		return nil
	}

	selectedScene, err := scene.Create(opts.scene, opts.width, opts.height)
	if err != nil {
		return err
	}

	config := renderer.DefaultProgressiveConfig()
	config.NumWorkers = opts.workers
	config.MaxPasses = opts.passes
	config.Exposure = selectedScene.Config.Exposure
	if opts.exposure > 0 {
		config.Exposure = opts.exposure
	}
	if mode, err := renderer.ParseToneMode(selectedScene.Config.ToneMode); err == nil {
		config.ToneMode = mode
	}

	logger := &writerLogger{w: output}
	logger.Printf("Rendering %s at %dx%d, %d passes\n", opts.scene, opts.width, opts.height, opts.passes)

	raytracer := renderer.NewProgressiveRaytracer(selectedScene, opts.width, opts.height, config, logger)
	startTime := time.Now()
	if err := raytracer.Start(ctx); err != nil {
		return err
	}
	defer raytracer.Stop()

	done := make(chan struct{})
	go func() {
		raytracer.Wait()
		close(done)
	}()

	report := func(event renderer.PassEvent) {
		stats := raytracer.Stats()
		logger.Printf("Pass %d/%d (worker %d) in %v, mean variance %.6g\n",
			event.Pass, opts.passes, event.Worker, event.Duration.Round(time.Millisecond), stats.MeanVariance)
	}

loop:
	for {
		select {
		case event := <-raytracer.Updates():
			report(event)
		case <-done:
			break loop
		}
	}
	for {
		select {
		case event := <-raytracer.Updates():
			report(event)
			continue
		default:
		}
		break
	}

	stats := raytracer.Stats()
	logger.Printf("Render completed in %v: %d passes, %.1f samples per pixel\n",
		time.Since(startTime).Round(time.Millisecond), stats.Passes, stats.AverageSamples)
	logger.Printf("Mean variance: %.6g\n", stats.MeanVariance)
	logger.Printf("Average display luminance: %.3f\n", renderer.CalculateAverageLuminance(raytracer.DisplayImage()))

	if err := ctx.Err(); err != nil && stats.Passes < opts.passes {
		return fmt.Errorf("render interrupted after %d passes: %w", stats.Passes, err)
	}
	return nil
}

// writerLogger implements core.Logger on an io.Writer
type writerLogger struct {
	w io.Writer
}

func (l *writerLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format, args...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
