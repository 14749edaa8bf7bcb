package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	screenrecorder "github.com/ritikZ18/screen-recoder-da"
	"github.com/ritikZ18/screen-recoder-da/internal/sink"
)

func newRecordCmd(flags *globalFlags) *cobra.Command {
	var (
		monitor  int64
		window   string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a monitor or window until interrupted",
		Example: `  screenrec record --monitor 0 --duration 30s
  screenrec record --window 0x3a00007`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			src, err := sourceFromFlags(monitor, window)
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.mgr.Start(ctx, src, sink.Log{}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			info, _ := a.mgr.SessionInfo()
			_, _ = fmt.Fprintln(out, boxStyle.Render(
				titleStyle.Render("screenrec")+"\n"+
					field("source", info.Source)+"\n"+
					field("output", info.OutputPath)+"\n"+
					field("session", info.ID),
			))

			var deadline <-chan time.Time
			if duration > 0 {
				timer := time.NewTimer(duration)
				defer timer.Stop()
				deadline = timer.C
			}

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

		wait:
			for {
				select {
				case <-ctx.Done():
					break wait
				case <-deadline:
					break wait
				case <-ticker.C:
					printStatus(out, a.mgr.Status(), a.mgr.Metrics())
				}
			}
			_, _ = fmt.Fprintln(out)

			stopCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutS)*time.Second)
			defer cancel()

			final := a.mgr.Status()
			path, err := a.mgr.Stop(stopCtx)
			if path != "" {
				_, _ = fmt.Fprintln(out, okStyle.Render("saved ")+path+
					valueStyle.Render(fmt.Sprintf(" (%s)", formatDuration(final.Duration))))
			}
			return err
		},
	}

	cmd.Flags().Int64Var(&monitor, "monitor", -1, "monitor index to record (default 0 when --window is not set)")
	cmd.Flags().StringVar(&window, "window", "", "window handle to record (decimal or 0x hex)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 = until interrupted)")
	return cmd
}

func printStatus(w io.Writer, st screenrecorder.RecordingStatus, m screenrecorder.MetricsSnapshot) {
	state := recStyle.Render("● REC")
	if st.IsPaused {
		state = pausedStyle.Render("Ⅱ PAUSED")
	}
	_, _ = fmt.Fprintf(w, "\r%s %s  %s  %s  %s",
		state,
		valueStyle.Render(formatDuration(st.Duration)),
		valueStyle.Render(fmt.Sprintf("%5.1f fps", m.CaptureFPS)),
		valueStyle.Render(fmt.Sprintf("drops %d", m.DroppedFrames)),
		valueStyle.Render(fmt.Sprintf("cpu %4.1f%%  mem %.0f MB", m.CPUUsagePercent, m.MemoryUsageMB)),
	)
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
