// Package goprofile describes Go coverage profiles as report sessions and
// execution records, one record per instrumented source file.
package goprofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/tools/cover"

	"github.com/goforwind/jacoco/pkg/data"
)

// Import parses the profile at path. The session is named after the file and
// stamped with its modification time.
func Import(path string) (*data.Dump, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat profile: %w", err)
	}

	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	ms := info.ModTime().UnixMilli()
	dump := &data.Dump{
		Sessions: []data.SessionInfo{{
			ID:             SessionID(path),
			StartTimeStamp: ms,
			DumpTimeStamp:  ms,
		}},
		ExecutionData: make([]data.ExecutionData, 0, len(profiles)),
	}
	for _, p := range profiles {
		dump.ExecutionData = append(dump.ExecutionData, data.ExecutionData{
			Name: p.FileName,
			ID:   Fingerprint(p),
		})
	}
	return dump, nil
}

// SessionID derives a session id from a profile path, e.g. "/tmp/unit.out" -> "unit"
func SessionID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Fingerprint hashes the block layout of a profile. Execution counts are
// excluded so every run of the same build yields the same id.
func Fingerprint(p *cover.Profile) int64 {
	d := xxhash.New()
	d.WriteString(p.FileName)
	for _, b := range p.Blocks {
		fmt.Fprintf(d, "\n%d.%d,%d.%d %d", b.StartLine, b.StartCol, b.EndLine, b.EndCol, b.NumStmt)
	}
	return int64(d.Sum64())
}
