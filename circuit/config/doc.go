// Package config provides board catalog and settings management for the circuit tracer.
//
// The config package handles:
//   - Loading named boards from a boards directory
//   - Caching parsed boards and listing what is available
//   - Application settings from YAML, .env files and environment variables
//
// Board Files:
//
// Boards are stored as *.dat or *.txt files in the boards directory, in the
// same layout the command line accepts. A board's name is its file name
// without the extension.
//
// Usage:
//
//	manager, err := config.NewManager("boards")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	b, err := manager.LoadBoard("grid1")
//	boards, err := manager.ListBoards()
//
// Settings:
//
// LoadSettings starts from defaults, applies an optional YAML file, loads a
// .env file if present and finally applies CIRCUIT_* environment variables.
package config
