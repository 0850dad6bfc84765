// Package config loads per-module JSON configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load decodes the JSON file at path into a new T, creating the parent
// directory first so a module can be started against a not-yet-existing
// config path during first-boot scripting.
func Load[T any](path string) (*T, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("crear directorio de configuración: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("ruta de configuración inválida %q: %w", path, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("abrir configuración %q: %w", absPath, err)
	}
	defer file.Close()

	var cfg T
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decodificar configuración %q: %w", absPath, err)
	}
	return &cfg, nil
}
