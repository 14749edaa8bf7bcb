package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ritikZ18/screen-recoder-da/internal/analytics"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <recording or sidecar>",
		Short: "Summarize the analytics timeline of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.HasSuffix(path, analytics.SidecarSuffix) {
				path = analytics.SidecarPath(path)
			}

			meta, err := analytics.LoadMetadata(path)
			if err != nil {
				return err
			}
			s := analytics.Summarize(meta.Entries)

			scenes := make([]string, 0, len(s.SceneTimes))
			for _, t := range s.SceneTimes {
				scenes = append(scenes, fmt.Sprintf("%.1fs", t))
			}
			if len(scenes) == 0 {
				scenes = append(scenes, "none")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(strings.Join([]string{
				titleStyle.Render(filepath.Base(meta.VideoPath)),
				field("entries", fmt.Sprintf("%d over %.1fs", s.Entries, s.Span)),
				field("brightness", fmt.Sprintf("%.3f mean", s.MeanBrightness)),
				field("activity", fmt.Sprintf("%.3f mean, %.3f peak", s.MeanActivity, s.PeakActivity)),
				field("scene changes", fmt.Sprintf("%d", s.SceneChanges)),
				field("at", strings.Join(scenes, " ")),
			}, "\n")))
			return nil
		},
	}
}
