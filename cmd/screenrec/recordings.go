package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ritikZ18/screen-recoder-da/internal/catalog"
)

func newRecordingsCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "List finished recordings from the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cfg.Catalog.Path == "" {
				return errors.New("catalog.path is not configured")
			}

			c, err := catalog.Open(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer c.Close()

			recs, err := c.List(context.Background(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				_, _ = fmt.Fprintln(out, "no recordings")
				return nil
			}
			for _, r := range recs {
				_, _ = fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top,
					labelStyle.UnsetWidth().Render(r.StartedAt.Local().Format(time.DateTime)+"  "),
					valueStyle.Render(fmt.Sprintf("%s  %6d frames  %3d drops  ",
						formatDuration(r.Duration), r.Frames, r.DroppedFrames)),
					okStyle.Render(r.OutputPath),
				))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows (0 = all)")
	return cmd
}
