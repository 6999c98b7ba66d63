package midi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TakeInfo represents a recorded take (for listing)
type TakeInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

const takeStamp = "2006-01-02_15-04-05"

// TakesDir returns the directory recordings are archived in
func TakesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drift", "takes"), nil
}

// TakeFilename names a take recorded at ts:
// 2024-01-15_14-30-00.mid or 2024-01-15_14-30-00_name.mid
func TakeFilename(ts time.Time, name string) string {
	base := ts.Format(takeStamp)
	if name != "" {
		base += "_" + name
	}
	return base + ".mid"
}

// ListTakes returns the takes in dir, newest first
func ListTakes(dir string) ([]TakeInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TakeInfo{}, nil
		}
		return nil, err
	}

	var takes []TakeInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".mid") {
			continue
		}

		baseName := strings.TrimSuffix(name, ".mid")
		if len(baseName) < len(takeStamp) {
			continue
		}
		ts, err := time.Parse(takeStamp, baseName[:len(takeStamp)])
		if err != nil {
			// Not a timestamped file, skip
			continue
		}

		takeName := ""
		if len(baseName) > len(takeStamp)+1 && baseName[len(takeStamp)] == '_' {
			takeName = baseName[len(takeStamp)+1:]
		}

		takes = append(takes, TakeInfo{
			Filename:  name,
			Name:      takeName,
			Timestamp: ts,
		})
	}

	sort.Slice(takes, func(i, j int) bool {
		return takes[i].Timestamp.After(takes[j].Timestamp)
	})
	return takes, nil
}

// SaveTake writes the recording to path and, when meta is non-nil, a JSON
// description of it next to it (same name, .json)
func SaveTake(r *Recorder, path string, meta any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := r.Save(path); err != nil {
		return fmt.Errorf("save take: %w", err)
	}
	if meta == nil {
		return nil
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	side := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	return os.WriteFile(side, data, 0644)
}
