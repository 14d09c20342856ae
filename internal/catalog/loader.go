package catalog

import (
	"embed"
	"log/slog"
	"os"
)

//go:embed catalog.json
var embeddedCatalog embed.FS

// Load tries to load the catalog in the following order:
// 1. Embedded catalog.json
// 2. External file defined by CATALOG_CONFIG_PATH (or default "config/catalog.json")
// 3. Hardcoded defaults
func Load() *Catalog {
	// 1. Try embedded
	data, err := embeddedCatalog.ReadFile("catalog.json")
	if err == nil {
		cat, parseErr := FromBytes(data)
		if parseErr == nil {
			slog.Info("Loaded catalog from embedded config.")
			return cat
		}
		slog.Warn("Embedded catalog failed to parse. Trying file fallback.", "error", parseErr)
	}

	// 2. Fallback to external file
	path := os.Getenv("CATALOG_CONFIG_PATH")
	if path == "" {
		path = "config/catalog.json"
	}
	if cat, err := FromFile(path); err == nil {
		slog.Info("Loaded catalog from external file", "path", path)
		return cat
	} else {
		slog.Warn("Failed to load external catalog, falling back to defaults", "path", path, "error", err)
	}

	// 3. Fallback to hardcoded defaults
	slog.Info("Using hardcoded default catalog")
	return Default()
}
