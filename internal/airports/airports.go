package airports

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed airports.json
var dataFS embed.FS

// Airport is one row of the static reference table shipped with the
// binary.
type Airport struct {
	Name         string `json:"name"`
	Municipality string `json:"municipality"`
	IATACode     string `json:"iata_code"`
}

var (
	once    sync.Once
	table   []Airport
	loadErr error
)

// Load parses the embedded dataset once and returns the shared slice.
// Callers must not mutate it.
func Load() ([]Airport, error) {
	once.Do(func() {
		raw, err := dataFS.ReadFile("airports.json")
		if err != nil {
			loadErr = fmt.Errorf("read airport dataset: %w", err)
			return
		}
		if err := json.Unmarshal(raw, &table); err != nil {
			loadErr = fmt.Errorf("parse airport dataset: %w", err)
		}
	})
	return table, loadErr
}

// ByCode returns the airport with the given IATA code, or nil.
func ByCode(code string) (*Airport, error) {
	all, err := Load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].IATACode == code {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Cities returns the sorted, de-duplicated municipality list.
func Cities() ([]string, error) {
	all, err := Load()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(all))
	cities := make([]string, 0, len(all))
	for _, a := range all {
		if !seen[a.Municipality] {
			seen[a.Municipality] = true
			cities = append(cities, a.Municipality)
		}
	}
	sort.Strings(cities)
	return cities, nil
}
