package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"squeeze/internal/backend"
	"squeeze/internal/processor"
	"squeeze/internal/tui"
)

var (
	optTo8Bits      bool
	optPNGMode      string
	optReduceColors int
	optQuality      int
	optEncoder      string
	optWorkDir      string
	optJobs         int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags] <path>",
	Short: "Recompress JPEG/PNG files in place when the result is smaller",
	Args:  requireFile,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		info, err := statInput(path)
		if err != nil {
			return err
		}

		mode, err := backend.ParsePNGMode(optPNGMode)
		if err != nil {
			return err
		}
		if optReduceColors < 0 || optReduceColors > 255 {
			return fmt.Errorf("--reduce-colors must be between 0 and 255")
		}
		if optQuality < 1 || optQuality > 100 {
			return fmt.Errorf("--quality must be between 1 and 100")
		}

		// The progress view owns the terminal while a directory runs.
		useTUI := info.IsDir()
		logger := newLogger()
		if useTUI && !verbose {
			logger.SetLevel(log.WarnLevel)
		}

		b, err := backend.Init(backend.Config{Encoder: backend.Encoder(optEncoder), Logger: logger})
		if err != nil {
			return err
		}
		defer b.Shutdown()

		opts := processor.Options{
			To8Bits:      optTo8Bits,
			PNGMode:      mode,
			ReduceColors: optReduceColors,
			JPEGQuality:  optQuality,
			WorkDir:      optWorkDir,
			Workers:      optJobs,
			Logger:       logger,
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var updates chan processor.ProgressUpdate
		uiDone := make(chan struct{})
		if useTUI {
			updates = make(chan processor.ProgressUpdate, 64)
			program := tea.NewProgram(tui.NewModel(updates, cancel))
			go func() {
				defer close(uiDone)
				if _, err := program.Run(); err != nil {
					logger.Error("progress view failed", "err", err)
				}
				// The view may quit early; stop the run and keep the channel moving.
				cancel()
				for range updates {
				}
			}()
		} else {
			close(uiDone)
		}

		summary, results, err := processor.Run(ctx, b, path, opts, updates)
		if updates != nil {
			close(updates)
		}
		<-uiDone
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		out := cmd.OutOrStdout()
		for _, res := range results {
			fmt.Fprintf(out, "%s %s\n", resultStyle(res.Status).Render(fmt.Sprintf("%-8s", res.Status)), fileStyle.Render(res.Display))
			switch res.Status {
			case processor.StatusFailed:
				fmt.Fprintf(out, "  %s\n", dimStyle.Render(res.Err.Error()))
			default:
				fmt.Fprintf(out, "  %s\n", dimStyle.Render(fmt.Sprintf("%s -> %s",
					tui.FormatBytes(res.SizeBefore), tui.FormatBytes(res.SizeAfter))))
			}
		}

		rows := []tui.SummaryRow{
			{Label: "Images processed", Value: fmt.Sprintf("%d", summary.Processed)},
			{Label: "Files replaced", Value: fmt.Sprintf("%d", summary.Replaced)},
			{Label: "Errors", Value: fmt.Sprintf("%d", summary.Errors), Warn: summary.Errors > 0},
			{Label: "Space saved", Value: tui.FormatBytes(summary.BytesSaved)},
		}
		fmt.Fprintln(out, tui.RenderSummary(rows))

		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted after %d images", summary.Processed)
		}
		if summary.Errors > 0 {
			return fmt.Errorf("%d of %d images could not be optimized", summary.Errors, summary.Processed)
		}
		return nil
	},
}

var (
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	dimStyle      = lipgloss.NewStyle().Foreground(tui.ColorDim)
	replacedStyle = lipgloss.NewStyle().Foreground(tui.ColorSuccess)
	keptStyle     = lipgloss.NewStyle().Foreground(tui.ColorInk)
	failedStyle   = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)

func resultStyle(s processor.Status) lipgloss.Style {
	switch s {
	case processor.StatusReplaced:
		return replacedStyle
	case processor.StatusKept:
		return keptStyle
	default:
		return failedStyle
	}
}

func init() {
	optimizeCmd.Flags().BoolVar(&optTo8Bits, "to8bits", false, "reduce 16-bit PNGs to 8 bits per channel")
	optimizeCmd.Flags().StringVar(&optPNGMode, "png-mode", "", `extra PNG processing: "" or "gray"`)
	optimizeCmd.Flags().IntVar(&optReduceColors, "reduce-colors", 0, "gray levels to keep after a gray conversion (0 keeps all)")
	optimizeCmd.Flags().IntVarP(&optQuality, "quality", "q", processor.DefaultJPEGQuality, "JPEG quality (1-100)")
	optimizeCmd.Flags().StringVar(&optEncoder, "encoder", string(backend.EncoderStd), "JPEG encoder: std or jpegli")
	optimizeCmd.Flags().StringVar(&optWorkDir, "workdir", "", "directory for temporary working copies (default: current directory)")
	optimizeCmd.Flags().IntVarP(&optJobs, "jobs", "j", 0, "files optimized concurrently (default: number of CPUs)")

	rootCmd.AddCommand(optimizeCmd)
}
