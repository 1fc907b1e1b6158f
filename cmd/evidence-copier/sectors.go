// Sectors commands manage the per-sector evidence folder hierarchy and
// its durable index.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alianza/evidence-copier/internal/index"
	"github.com/alianza/evidence-copier/internal/logging"
	"github.com/alianza/evidence-copier/internal/provision"
)

var (
	sectorName   string
	sectorAllies []string
	sectorSheet  string
	sectorRange  string
	sectorMerge  bool

	uploadAlly string
	uploadList string
)

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "Manage sector evidence folders and the sector index",
}

var sectorsSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision a sector folder with one subfolder per ally",
	Long: `Setup creates (or reuses) a sector folder under the configured root
folder, then one subfolder per ally, and records the hierarchy in the
sector index. Existing folders are reused, making repeat runs
idempotent. A single ally failure never aborts the rest.

Allies come from --allies, or from the first column of a spreadsheet
range via --sheet and --range.

Example:
  evidence-copier sectors setup --name abastos --allies "JUAN_RUIZ,ACME_CORP"
  evidence-copier sectors setup --name abastos --sheet 1Bxi... --range "Sheet1!A2:A" --merge`,
	RunE: runSectorsSetup,
}

var sectorsAddAlliesCmd = &cobra.Command{
	Use:   "add-allies",
	Short: "Add allies to an existing sector",
	Long: `Add-allies provisions folders for new allies under a sector that is
already in the index and records them. The sector must exist; existing
allies keep their folders and screenshots.`,
	RunE: runSectorsAddAllies,
}

var sectorsUploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload screenshot files to an ally's evidence folder",
	Long: `Upload sends local screenshot files to the ally's folder, prefixing
every remote name with the list label: <list>_<basename>.png. Each
upload is recorded in the sector index; a single failed file never
aborts the rest.

Example:
  evidence-copier sectors upload --sector abastos --ally JUAN_RUIZ --list lista_a screenshots/match_juan_ruiz_20260131_101502_001.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSectorsUpload,
}

var sectorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sectors and their ally counts",
	RunE:  runSectorsList,
}

func init() {
	sectorsSetupCmd.Flags().StringVar(&sectorName, "name", "", "sector name (required)")
	sectorsSetupCmd.Flags().StringSliceVar(&sectorAllies, "allies", nil, "ally names")
	sectorsSetupCmd.Flags().StringVar(&sectorSheet, "sheet", "", "spreadsheet URL or id to read ally names from")
	sectorsSetupCmd.Flags().StringVar(&sectorRange, "range", "Sheet1!A2:A", "A1 range of the ally name column")
	sectorsSetupCmd.Flags().BoolVar(&sectorMerge, "merge", false, "merge into an existing sector instead of resetting it")
	_ = sectorsSetupCmd.MarkFlagRequired("name")

	sectorsAddAlliesCmd.Flags().StringVar(&sectorName, "name", "", "sector name (required)")
	sectorsAddAlliesCmd.Flags().StringSliceVar(&sectorAllies, "allies", nil, "ally names (required)")
	_ = sectorsAddAlliesCmd.MarkFlagRequired("name")
	_ = sectorsAddAlliesCmd.MarkFlagRequired("allies")

	sectorsUploadCmd.Flags().StringVar(&sectorName, "sector", "", "sector name (required)")
	sectorsUploadCmd.Flags().StringVar(&uploadAlly, "ally", "", "ally name (required)")
	sectorsUploadCmd.Flags().StringVar(&uploadList, "list", "unknown", "list label prefixed to remote file names")
	_ = sectorsUploadCmd.MarkFlagRequired("sector")
	_ = sectorsUploadCmd.MarkFlagRequired("ally")

	sectorsCmd.AddCommand(sectorsSetupCmd)
	sectorsCmd.AddCommand(sectorsAddAlliesCmd)
	sectorsCmd.AddCommand(sectorsUploadCmd)
	sectorsCmd.AddCommand(sectorsListCmd)
}

func runSectorsSetup(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	allies := sectorAllies
	if len(allies) == 0 && sectorSheet != "" {
		var err error
		allies, err = readNames(ctx, sectorSheet, sectorRange)
		if err != nil {
			return err
		}
	}

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
	hier, err := prov.CreateHierarchy(ctx, rootID, sectorName, allies)
	if err != nil {
		return fmt.Errorf("provision sector %q: %w", sectorName, err)
	}

	idx := index.NewStore(cfg.IndexPath())
	doc, err := idx.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sector index: %w", err)
	}
	doc.UpsertSector(sectorName, hier.SectorFolderID, sectorMerge).ParentFolder = rootID
	for ally, folderID := range hier.AllyFolders {
		if err := doc.AddAlly(sectorName, ally, folderID); err != nil {
			return err
		}
	}
	if err := idx.Save(ctx, doc); err != nil {
		return fmt.Errorf("save sector index: %w", err)
	}

	return printHierarchy(sectorName, hier)
}

func runSectorsAddAllies(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	idx := index.NewStore(cfg.IndexPath())
	doc, err := idx.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sector index: %w", err)
	}
	sector, ok := doc.Sectors[sectorName]
	if !ok {
		return fmt.Errorf("sector %q is not in the index, run sectors setup first", sectorName)
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open drive store: %w", err)
	}
	defer store.Close()

	prov := provision.New(store, logging.Component("provision"))
	created, failed := 0, map[string]string{}
	for _, ally := range sectorAllies {
		folder, madeNew, err := prov.Resolve(ctx, sector.FolderID, ally)
		if err != nil {
			failed[ally] = err.Error()
			continue
		}
		if madeNew {
			created++
		}
		if err := doc.AddAlly(sectorName, ally, folder.ID); err != nil {
			return err
		}
	}
	if err := idx.Save(ctx, doc); err != nil {
		return fmt.Errorf("save sector index: %w", err)
	}

	if jsonOutput {
		output, err := json.MarshalIndent(map[string]any{
			"sector":  sectorName,
			"added":   len(sectorAllies) - len(failed),
			"created": created,
			"failed":  failed,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}
	fmt.Printf("Sector %s: added %d allies (%d new folders)\n",
		sectorName, len(sectorAllies)-len(failed), created)
	for ally, detail := range failed {
		fmt.Printf("  failed %-30s %s\n", ally, detail)
	}
	return nil
}

func runSectorsUpload(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	idx := index.NewStore(cfg.IndexPath())
	doc, err := idx.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sector index: %w", err)
	}
	sector, ok := doc.Sectors[sectorName]
	if !ok {
		return fmt.Errorf("sector %q is not in the index", sectorName)
	}
	ally, ok := sector.Allies[uploadAlly]
	if !ok {
		return fmt.Errorf("ally %q is not in sector %q", uploadAlly, sectorName)
	}
	// Allies indexed before their folder resolved fall back to the
	// sector folder, matching where earlier evidence already landed.
	folderID := ally.FolderID
	if folderID == "" {
		folderID = sector.FolderID
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open drive store: %w", err)
	}
	defer store.Close()

	uploaded := 0
	failed := map[string]string{}
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			failed[path] = err.Error()
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		remoteName := fmt.Sprintf("%s_%s.png", uploadList, stem)

		file, err := store.UploadFile(ctx, folderID, remoteName, data)
		if err != nil {
			failed[path] = err.Error()
			continue
		}
		uploaded++
		if err := doc.RecordScreenshot(sectorName, uploadAlly, index.Screenshot{
			Name:       remoteName,
			FileID:     file.ID,
			ViewURL:    file.ViewURL,
			CapturedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
	}
	if uploaded > 0 {
		if err := idx.Save(ctx, doc); err != nil {
			return fmt.Errorf("save sector index: %w", err)
		}
	}

	if jsonOutput {
		output, err := json.MarshalIndent(map[string]any{
			"sector":   sectorName,
			"ally":     uploadAlly,
			"uploaded": uploaded,
			"failed":   failed,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}
	fmt.Printf("Uploaded %d/%d files for %s/%s\n", uploaded, len(args), sectorName, uploadAlly)
	for path, detail := range failed {
		fmt.Printf("  failed %-40s %s\n", path, detail)
	}
	return nil
}

func runSectorsList(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	idx := index.NewStore(cfg.IndexPath())
	doc, err := idx.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sector index: %w", err)
	}

	if jsonOutput {
		output, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	names := doc.SectorNames()
	if len(names) == 0 {
		fmt.Println("No sectors in the index")
		return nil
	}
	for _, name := range names {
		sector := doc.Sectors[name]
		screenshots := 0
		for _, ally := range sector.Allies {
			screenshots += len(ally.Screenshots)
		}
		fmt.Printf("%-30s allies=%d screenshots=%d folder=%s\n",
			name, len(sector.Allies), screenshots, sector.FolderID)
	}
	return nil
}

func printHierarchy(name string, hier *provision.Result) error {
	if jsonOutput {
		output, err := json.MarshalIndent(hier, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Sector %s: folder %s, created %d, reused %d\n",
		name, hier.SectorFolderID, hier.Created, hier.Existing)

	allies := make([]string, 0, len(hier.AllyFolders))
	for ally := range hier.AllyFolders {
		allies = append(allies, ally)
	}
	sort.Strings(allies)
	for _, ally := range allies {
		fmt.Printf("  %-30s %s\n", ally, hier.AllyFolders[ally])
	}
	for ally, detail := range hier.Failed {
		fmt.Printf("  failed %-23s %s\n", ally, detail)
	}
	return nil
}
