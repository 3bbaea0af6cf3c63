package main

import (
	"fmt"
	"os"

	"eternal-mint/conf"
	"eternal-mint/tool"

	"github.com/spf13/cobra"
)

type sniffResult struct {
	Path      string `json:"path"`
	Size      int    `json:"size"`
	Detected  string `json:"detected"`
	Supported bool   `json:"supported"`
}

func sniff(path string, data []byte, supported []string) sniffResult {
	detected := tool.DetectFileType(data)
	return sniffResult{
		Path:      path,
		Size:      len(data),
		Detected:  detected,
		Supported: tool.IsSupportedImageType(detected, supported),
	}
}

var sniffSupported []string

var sniffCmd = &cobra.Command{
	Use:     "sniff <file>...",
	Short:   "Classify files by magic number and check them against the upload allow-list",
	GroupID: "offline",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		supported := sniffSupported
		if len(supported) == 0 {
			supported = conf.NewDefaultConfig(conf.ParseEnvironment(envName)).Uploader.SupportedImageTypes
		}

		results := make([]sniffResult, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			results = append(results, sniff(path, data, supported))
		}

		if jsonOutput {
			return printJSON(results)
		}
		for _, r := range results {
			mark := "✅"
			if !r.Supported {
				mark = "⚠️ "
			}
			fmt.Printf("%s %s  %s  %d bytes\n", mark, r.Path, r.Detected, r.Size)
		}
		return nil
	},
}

func init() {
	sniffCmd.Flags().StringSliceVar(&sniffSupported, "supported", nil, "allowed image types, defaults to the environment's uploader list")
}
