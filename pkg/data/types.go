package data

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SessionInfo describes one run of an instrumented program
type SessionInfo struct {
	ID             string `json:"id"`
	StartTimeStamp int64  `json:"start"` // epoch milliseconds
	DumpTimeStamp  int64  `json:"dump"`  // epoch milliseconds
}

// ExecutionData identifies the coverage data recorded for one class
type ExecutionData struct {
	Name string `json:"name"` // fully qualified class name
	ID   int64  `json:"id"`   // content fingerprint of the class
}

// Dump is the JSON interchange form of a set of sessions and execution records
type Dump struct {
	Sessions      []SessionInfo   `json:"sessions"`
	ExecutionData []ExecutionData `json:"executionData"`
}

// ReadDump decodes a dump from r
func ReadDump(r io.Reader) (*Dump, error) {
	var d Dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	return &d, nil
}

// ReadDumpFile decodes the dump stored at path
func ReadDumpFile(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	return ReadDump(f)
}
