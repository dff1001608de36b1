package iocache

import (
	"errors"
	"fmt"

	"github.com/codesight/codesight/internal/contract"
	"github.com/codesight/codesight/internal/parquet"
)

// ExecuteArchiveExport writes the archived runs and hotspots to a pair of Parquet files
// named after outputFile.
func ExecuteArchiveExport(store contract.ArchiveStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("report archive is not enabled; set --archive-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get archive status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no archived runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total archived runs: %d\n", status.TotalRuns)
	fmt.Printf("Total hotspot records: %d\n", status.TableSizes[hotspotsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve archived runs: %w", err)
	}
	hotspots, err := store.GetAllHotspots()
	if err != nil {
		return fmt.Errorf("failed to retrieve archived hotspots: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetHotspots := parquet.ConvertHotspotRecords(hotspots)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write archived runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	hotspotsFile := outputFile + ".hotspots.parquet"
	if err := parquet.WriteHotspotsParquet(parquetHotspots, hotspotsFile); err != nil {
		return fmt.Errorf("failed to write archived hotspots: %w", err)
	}
	fmt.Printf("Exported %d hotspot records to: %s\n", len(parquetHotspots), hotspotsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
