package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "squeeze [file]",
	Short: "squeeze - inspect images and shrink JPEG/PNG files in place",
	Long: "squeeze reports image metadata and recompresses JPEG and PNG files, " +
		"replacing a file only when the result is smaller.\n\n" +
		"Running squeeze with a single file argument is the same as `squeeze info <file>`.",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFile(cmd, args); err != nil {
			return err
		}
		return runInfo(cmd, args)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// requireFile enforces exactly one positional file argument.
func requireFile(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <image_file>", cmd.CommandPath())
	}
	return nil
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "squeeze"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&infoDetectGray, "detect-gray", false, "also classify the image as grayscale or color")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
