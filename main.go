package main

import (
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/rm-hull/compat-blur/cmd"
	"github.com/rm-hull/compat-blur/internal"
	"github.com/rm-hull/compat-blur/internal/blur"
	"github.com/spf13/cobra"
)

func main() {
	var port int
	var debug bool
	var verbose bool
	var poolSize int
	var interval time.Duration
	var blurOutput, animateOutput string

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	engineOpts := cmd.EngineOptionsFromEnv()
	pipelineOpts := cmd.DefaultPipelineOptions()
	animateOpts := cmd.AnimateOptions{Steps: 8, FrameDelay: 0.1}

	rootCmd := &cobra.Command{
		Use:  "compat-blur",
		Long: `Blur images beyond the radius limit of the underlying blur primitive`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
				blur.SetLogger(slog.Default())
				internal.EnvironmentVars("BLUR_")
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log blur pass plans and session lifecycle")
	rootCmd.PersistentFlags().StringVar(&engineOpts.Primitive, "primitive", engineOpts.Primitive, "Blur primitive: gaussian or box (env BLUR_PRIMITIVE)")
	rootCmd.PersistentFlags().BoolVar(&engineOpts.Native, "native", engineOpts.Native, "Prefer the single-call native blur (env BLUR_NATIVE)")

	pipelineFlags := func(c *cobra.Command) {
		c.Flags().Float64VarP(&pipelineOpts.Radius, "radius", "r", 0, "Blur radius")
		c.Flags().StringVar(&pipelineOpts.Unit, "unit", pipelineOpts.Unit, "Radius unit: px or dp")
		c.Flags().Float64Var(&pipelineOpts.Density, "density", pipelineOpts.Density, "Pixels per dp")
		c.Flags().StringVar(&pipelineOpts.Edge, "edge", pipelineOpts.Edge, "Edge treatment: transparent or clamp")
		c.Flags().BoolVar(&pipelineOpts.Greyscale, "greyscale", false, "Desaturate after blurring")
		c.Flags().StringVar(&pipelineOpts.Tint, "tint", "", "Tint colour as #rrggbb[aa]")
		c.Flags().Float64Var(&pipelineOpts.Alpha, "alpha", pipelineOpts.Alpha, "Opacity between 0 and 1")
		c.Flags().BoolVar(&pipelineOpts.Fit, "fit", false, "Scale the result back to the source size")
		c.Flags().IntVar(&pipelineOpts.Width, "width", 0, "Scale the result to this width")
		c.Flags().IntVar(&pipelineOpts.Height, "height", 0, "Scale the result to this height")
	}

	blurCmd := &cobra.Command{
		Use:   "blur <input> [--output <path>] [--radius <r>]",
		Short: "Blur a single image",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Blur(args[0], blurOutput, engineOpts, pipelineOpts)
		},
	}
	pipelineFlags(blurCmd)
	blurCmd.Flags().StringVarP(&blurOutput, "output", "o", "blurred.png", "Output PNG")

	animateCmd := &cobra.Command{
		Use:   "animate <input> [--output <path>] [--radius <r>] [--steps <n>]",
		Short: "Render an APNG blurring from sharp to the given radius",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Animate(args[0], animateOutput, engineOpts, animateOpts)
		},
	}
	animateCmd.Flags().Float64VarP(&animateOpts.MaxRadius, "radius", "r", 25, "Final blur radius in pixels")
	animateCmd.Flags().IntVar(&animateOpts.Steps, "steps", animateOpts.Steps, "Number of steps after the sharp frame")
	animateCmd.Flags().Float64Var(&animateOpts.FrameDelay, "delay", animateOpts.FrameDelay, "Seconds per frame")
	animateCmd.Flags().StringVarP(&animateOutput, "output", "o", "animated.png", "Output APNG")

	batchCmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Blur every image in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Batch(args[0], args[1], poolSize, engineOpts, pipelineOpts)
		},
	}
	pipelineFlags(batchCmd)
	batchCmd.Flags().IntVar(&poolSize, "workers", 4, "Worker pool size")

	watchCmd := &cobra.Command{
		Use:   "watch <input-dir> <output-dir> [--interval <duration>]",
		Short: "Blur new images in a directory periodically",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.Watch(args[0], args[1], poolSize, interval, engineOpts, pipelineOpts)
		},
	}
	pipelineFlags(watchCmd)
	watchCmd.Flags().IntVar(&poolSize, "workers", 4, "Worker pool size")
	watchCmd.Flags().DurationVar(&interval, "interval", time.Minute, "Time between scans")

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--port <port>] [--debug]",
		Short: "Start HTTP API server",
		Run: func(_ *cobra.Command, _ []string) {
			internal.ShowVersion()
			cmd.ApiServer(port, debug, engineOpts)
		},
	}
	apiServerCmd.Flags().IntVar(&port, "port", 8080, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(_ *cobra.Command, _ []string) {
			internal.ShowVersion()
		},
	}

	rootCmd.AddCommand(blurCmd, animateCmd, batchCmd, watchCmd, apiServerCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
