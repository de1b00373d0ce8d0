// Package runs keeps finished circuit searches in memory.
//
// Every search triggered through the service layer is recorded as a run so
// clients can fetch its solutions again by ID without repeating the search.
//
// Run Identifiers:
//
// Runs use 6-character hexadecimal IDs generated from crypto/rand. Lookups
// are case-insensitive so IDs can be typed by hand.
//
// Expiry:
//
// CleanupExpired removes runs that have not been read for longer than the
// configured retention. The server calls it from a ticker goroutine.
//
// Usage:
//
//	manager := runs.NewManager()
//	run, err := manager.Create(&service.Run{Board: "grid1", Storage: trace.Queue})
//	if err != nil {
//		return err
//	}
//	same, _ := manager.Get(run.ID)
package runs
