package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"squeeze/internal/backend"
)

var infoDetectGray bool

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print image metadata as JSON",
	Args:  requireFile,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := statInput(path); err != nil {
		return err
	}

	b, err := backend.Init(backend.Config{Logger: newLogger()})
	if err != nil {
		return err
	}
	defer b.Shutdown()

	info, err := b.Info(path)
	if err != nil {
		return err
	}
	if infoDetectGray {
		gray, err := b.DetectGray(path)
		if err != nil {
			return err
		}
		info.Grayscale = &gray
	}

	out, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func statInput(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return info, err
}

func init() {
	infoCmd.Flags().BoolVar(&infoDetectGray, "detect-gray", false, "also classify the image as grayscale or color")

	rootCmd.AddCommand(infoCmd)
}
