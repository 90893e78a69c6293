package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/medbillguard/medbillguard/internal/catalog"
	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/repository"
)

var (
	catalogFile     string
	catalogCategory string
	catalogFromDB   bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the reference price catalog",
	RunE:  runCatalog,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the catalog into the reference price database",
	Long: "Loads the catalog from an XLSX file (or the embedded seed) and " +
		"upserts it into the reference_prices table, so later runs can use " +
		"--from-db.",
	RunE: runCatalogImport,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFile, "file", "", "Catalog XLSX to load (default: embedded seed)")
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "Only show entries in this category")
	catalogCmd.Flags().BoolVar(&catalogFromDB, "from-db", false, "Load the catalog from the database (needs DB_URL)")
	catalogImportCmd.Flags().StringVar(&catalogFile, "file", "", "Catalog XLSX to import (default: embedded seed)")
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	var (
		cat *catalog.Catalog
		err error
	)
	if catalogFromDB {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		cat, err = loadCatalogFromDB(ctx, common.LoadConfig(), logger)
	} else {
		cat, err = loadCatalog(catalogFile, logger)
	}
	if err != nil {
		return err
	}

	var entries []catalog.Entry
	if catalogCategory != "" {
		entries = cat.ByCategory(catalogCategory)
	} else {
		entries = append(entries, cat.Entries()...)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CategoryName != entries[j].CategoryName {
			return entries[i].CategoryName < entries[j].CategoryName
		}
		return entries[i].ItemName < entries[j].ItemName
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tITEM\tCEILING\tUNIT\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			e.CategoryName, e.ItemName, e.CeilingPrice, e.Unit, e.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%d entries\n", len(entries))
	return nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		return fmt.Errorf("catalog import requires DB_URL")
	}
	cat, err := loadCatalog(catalogFile, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer repository.Close(pool, logger)

	if err := catalog.EnsureReferenceSchema(ctx, pool); err != nil {
		return err
	}
	n, err := catalog.ImportEntries(ctx, pool, cat.Entries(), logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d entries imported\n", n)
	return nil
}
