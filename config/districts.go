package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DistrictEntry maps a legal district code to its display name.
type DistrictEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DistrictTable is the full legal district reference table.
type DistrictTable struct {
	Districts []DistrictEntry `json:"districts"`
}

var (
	districtTable *DistrictTable
	districtIndex map[string]string
	districtLock  sync.RWMutex
)

const maxDistrictResults = 50

// LoadDistrictTable loads the legal district reference table from file. The
// table is read-only after loading; lookups against an unloaded table simply
// resolve nothing.
func LoadDistrictTable(path string) error {
	districtLock.Lock()
	defer districtLock.Unlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read district table: %v", err)
	}

	var table DistrictTable
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to parse district table: %v", err)
	}

	index := make(map[string]string, len(table.Districts))
	for _, d := range table.Districts {
		index[d.Code] = d.Name
	}

	districtTable = &table
	districtIndex = index
	return nil
}

// DistrictName returns the display name for a district code. Unknown codes
// resolve to an empty name, never an error.
func DistrictName(code string) string {
	districtLock.RLock()
	defer districtLock.RUnlock()
	return districtIndex[code]
}

// SearchDistricts returns table entries whose name contains the query,
// capped for dropdown population.
func SearchDistricts(query string) []DistrictEntry {
	districtLock.RLock()
	defer districtLock.RUnlock()

	if districtTable == nil {
		return nil
	}

	query = strings.TrimSpace(query)
	results := make([]DistrictEntry, 0)
	for _, d := range districtTable.Districts {
		if query == "" || strings.Contains(d.Name, query) {
			results = append(results, d)
			if len(results) == maxDistrictResults {
				break
			}
		}
	}
	return results
}
