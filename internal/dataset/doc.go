// Package dataset loads and normalizes the French public-security
// statistics CSV export from data.gouv.fr.
//
// The upstream file is semicolon-delimited and latin-1 encoded. Load reads
// it, verifies the required columns (Unite_temps, Zone_geographique, Valeurs,
// Indicateur), backfills the optional Code_dep column by deriving the
// department code from the geo zone label, and coerces years and values to
// integers. Rows that fail validation are dropped and counted; missing
// required columns abort the load.
//
// Basic usage:
//
//	ds, err := dataset.Load("data/serieschrono-datagouv.csv", dataset.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ds.Len(), ds.Report().Rejected)
//
// Store caches the parsed dataset for the process lifetime, keyed by the
// file's modification time, so the dashboard only pays the parse cost once
// per file version:
//
//	store := dataset.NewStore(path, dataset.DefaultOptions(), logger)
//	ds, err := store.Get(ctx)
//
// The Dataset is immutable after load and safe for concurrent readers.
package dataset
