package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var ErrNoMainExport = errors.New(`no main export file found: include a file starting with "Export"`)

var dateToken = regexp.MustCompile(`^\d{8}$`)

// ExtractQueueName derives the queue from a file name such as
// CallQueue_Detailed_20260111_20260118_Appointments.csv: every token after
// the second YYYYMMDD token, joined by spaces. Defaults to "Unknown".
func ExtractQueueName(filename string) string {
	base := filepath.Base(filename)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".csv", ".xlsx", ".xlsm":
		base = base[:len(base)-len(filepath.Ext(base))]
	}
	var parts []string
	dates := 0
	for _, p := range strings.Split(base, "_") {
		switch {
		case dateToken.MatchString(p):
			dates++
		case dates >= 2:
			parts = append(parts, p)
		}
	}
	name := strings.Join(parts, " ")
	if name == "" {
		return "Unknown"
	}
	return name
}

func isMainExport(base string) bool {
	return strings.HasPrefix(base, "Export") || strings.HasPrefix(base, "export")
}

func isQueueFile(base string) bool {
	return strings.HasPrefix(base, "CallQueue") || strings.HasPrefix(base, "callqueue")
}

// Classify picks the main export and the queue files out of paths. A
// single file that matches neither convention is taken as the main export.
func Classify(paths []string) (main string, queues []string, err error) {
	for _, p := range paths {
		base := filepath.Base(p)
		switch {
		case isMainExport(base):
			main = p
		case isQueueFile(base):
			queues = append(queues, p)
		}
	}
	if main == "" && len(paths) == 1 {
		main = paths[0]
	}
	if main == "" {
		return "", nil, ErrNoMainExport
	}
	return main, queues, nil
}

// ScanDir lists the readable data files in dir in name order.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if IsDataFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// IsDataFile reports whether name has an extension ReadRows understands.
func IsDataFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}
