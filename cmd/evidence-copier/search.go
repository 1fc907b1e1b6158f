// Search command runs a find-in-page capture pass over a document.
package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alianza/evidence-copier/internal/search"
)

var (
	searchURL   string
	searchTerms []string
	searchSheet string
	searchRange string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Capture find-in-page evidence for a list of names",
	Long: `Search opens the document, waits for manual authentication, then runs
find-in-page for every name and captures a screenshot per name into the
local screenshots directory.

Names come from --terms, or from the first column of a spreadsheet range
via --sheet and --range. Interrupting with Ctrl-C cancels the run but
keeps every screenshot captured so far.

Example:
  evidence-copier search --url https://docs.google.com/document/d/abc --terms "Juan Ruiz,Acme Corp"
  evidence-copier search --url https://docs.google.com/document/d/abc --sheet 1BxiMVs0XRA --range "Sheet1!A2:A"`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchURL, "url", "", "document URL to search in (required)")
	searchCmd.Flags().StringSliceVar(&searchTerms, "terms", nil, "names to search for")
	searchCmd.Flags().StringVar(&searchSheet, "sheet", "", "spreadsheet URL or id to read names from")
	searchCmd.Flags().StringVar(&searchRange, "range", "Sheet1!A2:A", "A1 range of the name column")
	_ = searchCmd.MarkFlagRequired("url")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	terms := searchTerms
	if len(terms) == 0 {
		if searchSheet == "" {
			return fmt.Errorf("either --terms or --sheet is required")
		}
		var err error
		terms, err = readNames(ctx, searchSheet, searchRange)
		if err != nil {
			return err
		}
	}
	if len(terms) == 0 {
		return fmt.Errorf("no names to search")
	}

	startWatcher(ctx)

	o := newOrchestrator("search")
	result, err := o.Run(ctx, search.Task{
		DocumentURL: searchURL,
		Terms:       terms,
		Kind:        "search",
	})
	if err != nil {
		return err
	}
	return printRunResult(result)
}

func printRunResult(result *search.Result) error {
	if jsonOutput {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	s := result.Summary
	fmt.Printf("Run %s: %s\n", result.RunID, s.State)
	fmt.Printf("  total=%d successful=%d failed=%d cancelled=%d duration=%s\n",
		s.Total, s.Successful, s.Failed, s.Cancelled, s.Duration.Round(time.Millisecond))
	for _, item := range result.Items {
		switch item.Status {
		case search.ItemCompleted:
			fmt.Printf("  ok   %-40s %s\n", item.Term, item.Screenshot)
		case search.ItemFailed:
			fmt.Printf("  fail %-40s %s\n", item.Term, item.Error)
		default:
			fmt.Printf("  %-4s %s\n", item.Status, item.Term)
		}
	}
	return nil
}
