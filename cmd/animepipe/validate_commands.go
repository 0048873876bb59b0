package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/ladder"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/outputcheck"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate manifests and transcoder output playlists",
	}

	validateCmd.AddCommand(newValidateManifestCommand())
	validateCmd.AddCommand(newValidateOutputCommand(ctx))

	return validateCmd
}

func newValidateManifestCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "manifest <manifest.xml>",
		Short:       "Parse and validate an episode manifest",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			m, err := manifest.ParseXML(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Manifest %s is valid\n", m.ManifestID)
			fmt.Fprintf(out, "  Episode:    %s %s (%q)\n", m.Episode.SeriesTitle, m.Episode.Code(), m.Episode.EpisodeTitle)
			fmt.Fprintf(out, "  Source:     %s %s @ %.3f fps\n", m.Mezzanine.VideoCodec, m.Mezzanine.Resolution(), m.Mezzanine.FrameRate)
			fmt.Fprintf(out, "  Audio:      %d track(s)\n", len(m.AudioTracks))
			fmt.Fprintf(out, "  Subtitles:  %d track(s)\n", len(m.SubtitleTracks))
			return nil
		},
	}
}

func newValidateOutputCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string
	var kind string
	var duration float64

	cmd := &cobra.Command{
		Use:   "output <playlist>",
		Short: "Check a rendered HLS playlist or DASH manifest",
		Long: "Runs structural checks against transcoder output. --kind selects the\n" +
			"document type (hls-master, hls-media, dash). When --manifest is given,\n" +
			"the expected variant set and source duration are derived from it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read playlist: %w", err)
			}

			var expected []ladder.Variant
			expectedDuration := duration
			if manifestPath != "" {
				data, err := os.ReadFile(manifestPath)
				if err != nil {
					return fmt.Errorf("read manifest: %w", err)
				}
				m, err := manifest.ParseXML(data)
				if err != nil {
					return err
				}
				expected = ladder.Build(m.Mezzanine.Width, m.Mezzanine.Height, cfg.Pipeline.EnableH265)
				if expectedDuration == 0 {
					expectedDuration = m.Episode.DurationSeconds
				}
			}

			reports, err := checkOutput(kind, string(content), expected, expectedDuration, cfg.OutputValidation.DurationToleranceSeconds)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			passed := true
			for _, report := range reports {
				fmt.Fprintf(out, "%s:\n", report.Kind)
				for _, check := range report.Checks {
					fmt.Fprintln(out, renderCheckLine(check.Name, check.Passed, check.Message, colorize))
				}
				passed = passed && report.Passed
			}
			if !passed {
				return fmt.Errorf("output validation failed")
			}
			fmt.Fprintln(out, "Output validation passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "hls-master", "Document type: hls-master, hls-media, or dash")
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Episode manifest to derive expectations from")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Expected duration in seconds (overrides the manifest)")
	return cmd
}

func checkOutput(kind, content string, expected []ladder.Variant, expectedDuration, tolerance float64) ([]*outputcheck.Report, error) {
	switch kind {
	case "hls-master":
		return []*outputcheck.Report{outputcheck.CheckHLSMaster(content, expected)}, nil
	case "hls-media":
		reports := []*outputcheck.Report{outputcheck.CheckHLSMedia(content)}
		if expectedDuration > 0 {
			actual := outputcheck.SumSegmentDurations(content)
			reports = append(reports, outputcheck.CheckDuration(actual, expectedDuration, tolerance))
		}
		return reports, nil
	case "dash":
		reports := []*outputcheck.Report{outputcheck.CheckDASH(content, expected)}
		if expectedDuration > 0 {
			actual := outputcheck.MPDDurationSeconds(content)
			reports = append(reports, outputcheck.CheckDuration(actual, expectedDuration, tolerance))
		}
		return reports, nil
	default:
		return nil, fmt.Errorf("unknown output kind %q", kind)
	}
}
