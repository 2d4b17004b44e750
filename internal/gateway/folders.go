package gateway

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

var dataExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
	".csv":  true,
}

// MapFolder maps the data files in one transaction folder to their
// categories by filename pattern.
func MapFolder(dir string) (map[domain.Category]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}

	paths := make(map[domain.Category]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !dataExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if category, ok := categorize(name); ok {
			paths[category] = filepath.Join(dir, name)
		}
	}
	return paths, nil
}

// categorize resolves a filename to a category. Dispute files sometimes
// arrive under the scheme's VROL naming.
func categorize(name string) (domain.Category, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "summary"):
		return domain.CategorySummary, true
	case strings.Contains(lower, "invoice"):
		return domain.CategoryInvoice, true
	case strings.Contains(lower, "card") && strings.Contains(lower, "issuance"):
		return domain.CategoryCard, true
	case strings.Contains(lower, "international"):
		return domain.CategoryInternational, true
	case strings.Contains(lower, "domestic"):
		return domain.CategoryDomestic, true
	case strings.Contains(lower, "vrol"), strings.Contains(lower, "dispute"):
		return domain.CategoryDispute, true
	}
	return "", false
}

// ScanTransactionFolders lists the transaction subfolders of a batch base
// directory, sorted by name.
func ScanTransactionFolders(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("failed to read base folder %s: %w", base, err)
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, filepath.Join(base, entry.Name()))
		}
	}
	sort.Strings(folders)
	return folders, nil
}
