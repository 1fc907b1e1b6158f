// Bundle command packs captured evidence into a single archival artifact.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/alianza/evidence-copier/internal/bundle"
)

var bundleOut string

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Pack captured screenshots into a tar.zst evidence bundle",
	Long: `Bundle archives every file in the screenshots directory, plus the
sector index when one exists, into a zstd-compressed tar for bulk
upload or offline retention.`,
	RunE: runBundle,
}

func init() {
	bundleCmd.Flags().StringVar(&bundleOut, "out", "", "bundle path (default <data_dir>/evidence_<timestamp>.tar.zst)")
}

func runBundle(cmd *cobra.Command, args []string) error {
	dst := bundleOut
	if dst == "" {
		stamp := time.Now().Format("20060102_150405")
		dst = filepath.Join(cfg.DataDir, fmt.Sprintf("evidence_%s.tar.zst", stamp))
	}

	var extra []string
	if _, err := os.Stat(cfg.IndexPath()); err == nil {
		extra = append(extra, cfg.IndexPath())
	}

	info, err := bundle.Write(dst, cfg.ScreenshotsDir, extra...)
	if err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}

	if jsonOutput {
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}
	fmt.Printf("Bundle %s: %d files, %d bytes payload\n", info.Path, info.Files, info.Bytes)
	return nil
}
