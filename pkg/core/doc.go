// Package core provides a small, stable facade over mayascan's internal
// engine for pipeline tools that want to scan scenes without shelling out to
// the CLI. Scans run in batch mode against the files on disk.
//
// Example:
//
//	cfg := core.Config{Root: "/projects/show/scenes", Signatures: signatures.Default()}
//	res, err := core.ScanDirectory(ctx, "", cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalOutcomes(os.Stdout, res.Outcomes)
package core
