package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/metrics"
	"github.com/ghjez/ba-backend/internal/pipeline"
)

func extractCommand(a *app) *cobra.Command {
	var (
		detector    string
		detectorURL string
		workers     int
		clean       bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "extract <drawing>...",
		Short: "Extract the rooms of one or more drawings",
		Long: `Run the full extraction on each drawing and write results.json,
floor.json, one floor_<name>.csv per drawing, the visual results and a copy
of each drawing into the output directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if detector != "" {
				cfg.Detector.Mode = detector
			}
			if detectorURL != "" {
				cfg.Detector.URL = detectorURL
			}
			if workers > 0 {
				cfg.Pipeline.Workers = workers
			}
			if metricsFile != "" {
				cfg.Metrics.Textfile = metricsFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if clean {
				if err := cfg.CleanDirs(); err != nil {
					return err
				}
			}

			var opts []pipeline.Option
			if cfg.Metrics.Textfile != "" {
				m, err := metrics.NewPipelineMetrics(prometheus.NewRegistry())
				if err != nil {
					return err
				}
				opts = append(opts, pipeline.WithMetrics(m))
			}

			pipe, err := pipeline.New(cfg, opts...)
			if err != nil {
				return err
			}
			defer pipe.Close()

			if hd, ok := pipe.Detector().(*detection.HTTPDetector); ok {
				if err := hd.CheckHealth(cmd.Context()); err != nil {
					return fmt.Errorf("detector service at %s: %w", hd.URL, err)
				}
			}

			batch, err := pipe.RunBatch(cmd.Context(), args)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "IMAGE\tSTATE\tELEMENTS\tFIELDS\tROOMS")
			for _, res := range batch.Images {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", res.Image, res.State, len(res.Elements), len(res.Fields), len(res.Floor))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nresults: %s\nfloors:  %s\n", batch.ResultsPath, batch.FloorPath)

			if batch.Failed > 0 {
				return fmt.Errorf("%d of %d drawings failed", batch.Failed, len(batch.Images))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&detector, "detector", "", "Detector mode: http, labels or edges")
	cmd.Flags().StringVar(&detectorURL, "detector-url", "", "Inference service URL for the http detector")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Drawings processed in parallel")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove files of a previous run from the output directory first")
	cmd.Flags().StringVar(&metricsFile, "metrics", "", "Write Prometheus metrics to this textfile")
	return cmd
}
