// Compare command intersects two name lists and optionally runs the full
// match capture workflow over the result.
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alianza/evidence-copier/internal/audit"
	"github.com/alianza/evidence-copier/internal/compare"
	"github.com/alianza/evidence-copier/internal/index"
	"github.com/alianza/evidence-copier/internal/logging"
	"github.com/alianza/evidence-copier/internal/provision"
	"github.com/alianza/evidence-copier/internal/search"
)

var (
	compareSheetA string
	compareRangeA string
	compareSheetB string
	compareRangeB string

	compareCapture bool
	compareURL     string
	compareSector  string
	compareMerge   bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Find names present in both of two spreadsheet lists",
	Long: `Compare reads the first column of two spreadsheet ranges, normalizes
every name (trimmed, lowercased) and prints the sorted intersection.

With --capture the matches are processed end to end: a sector folder is
provisioned under the configured root with one subfolder per matched
ally, the document is searched for every match, and each screenshot is
uploaded to its ally folder, recorded in the sector index and emitted
as an audit event.

Example:
  evidence-copier compare --sheet-a 1Bxi... --sheet-b 1Cyj... --range-b "Sheet1!B2:B"
  evidence-copier compare --sheet-a 1Bxi... --sheet-b 1Cyj... --capture --url https://docs.google.com/document/d/abc --sector abastos`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareSheetA, "sheet-a", "", "first spreadsheet URL or id (required)")
	compareCmd.Flags().StringVar(&compareRangeA, "range-a", "Sheet1!A2:A", "A1 range of the first name column")
	compareCmd.Flags().StringVar(&compareSheetB, "sheet-b", "", "second spreadsheet URL or id (required)")
	compareCmd.Flags().StringVar(&compareRangeB, "range-b", "Sheet1!A2:A", "A1 range of the second name column")
	compareCmd.Flags().BoolVar(&compareCapture, "capture", false, "capture and archive evidence for every match")
	compareCmd.Flags().StringVar(&compareURL, "url", "", "document URL to search in (required with --capture)")
	compareCmd.Flags().StringVar(&compareSector, "sector", "coincidencias", "sector name for the evidence hierarchy")
	compareCmd.Flags().BoolVar(&compareMerge, "merge", false, "merge into an existing sector instead of resetting it")
	_ = compareCmd.MarkFlagRequired("sheet-a")
	_ = compareCmd.MarkFlagRequired("sheet-b")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	listA, err := readNames(ctx, compareSheetA, compareRangeA)
	if err != nil {
		return fmt.Errorf("read list A: %w", err)
	}
	listB, err := readNames(ctx, compareSheetB, compareRangeB)
	if err != nil {
		return fmt.Errorf("read list B: %w", err)
	}

	matches := compare.Compare(listA, listB)

	if !compareCapture {
		return printMatches(matches)
	}
	if compareURL == "" {
		return fmt.Errorf("--url is required with --capture")
	}
	if len(matches) == 0 {
		fmt.Println("No matches found, nothing to capture")
		return nil
	}

	return captureMatches(ctx, matches)
}

func captureMatches(ctx context.Context, matches []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open drive store: %w", err)
	}
	defer store.Close()

	rootID, err := rootFolderID()
	if err != nil {
		return err
	}

	prov := provision.New(store, logging.Component("provision"))
	hier, err := prov.CreateHierarchy(ctx, rootID, compareSector, matches)
	if err != nil {
		return fmt.Errorf("provision sector %q: %w", compareSector, err)
	}

	idx := index.NewStore(cfg.IndexPath())
	doc, err := idx.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sector index: %w", err)
	}
	doc.UpsertSector(compareSector, hier.SectorFolderID, compareMerge).ParentFolder = rootID
	for ally, folderID := range hier.AllyFolders {
		if err := doc.AddAlly(compareSector, ally, folderID); err != nil {
			return err
		}
	}
	if err := idx.Save(ctx, doc); err != nil {
		return fmt.Errorf("save sector index: %w", err)
	}

	emitter := audit.NewEmitter(cfg.Audit)
	defer emitter.Close()

	// Allies that failed provisioning have no folder and are skipped.
	targets := make([]search.MatchTarget, 0, len(matches))
	for _, name := range matches {
		if folderID, ok := hier.AllyFolders[name]; ok {
			targets = append(targets, search.MatchTarget{Ally: name, FolderID: folderID})
		}
	}

	startWatcher(ctx)

	o := newOrchestrator("compare")
	result, err := o.RunMatches(ctx, search.MatchTask{
		DocumentURL: compareURL,
		Sector:      compareSector,
		Targets:     targets,
	}, search.Sinks{
		Store:    store,
		Index:    idx,
		Audit:    emitter,
		Backend:  cfg.Drive.Backend,
		Producer: producerInfo(),
	})
	if err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Printf("Matches: %d, folders created: %d, reused: %d\n",
			len(matches), hier.Created, hier.Existing)
		for ally, detail := range hier.Failed {
			fmt.Printf("  provision failed %-30s %s\n", ally, detail)
		}
	}
	return printRunResult(result)
}

func printMatches(matches []string) error {
	if jsonOutput {
		output, err := json.MarshalIndent(map[string]any{
			"matches_count": len(matches),
			"matches":       matches,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal matches: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Found %d matches\n", len(matches))
	for _, name := range matches {
		fmt.Println(name)
	}
	return nil
}
