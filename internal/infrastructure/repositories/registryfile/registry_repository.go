package registryfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/internal/domain/repositories"
)

// Format identifies a registry file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatForPath maps a file extension to its registry format.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl", ".tf":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported registry file extension in %q", path)
	}
}

// moduleRecord is the on-disk shape of a single module entry.
type moduleRecord struct {
	Name         string   `yaml:"name"         json:"name"`
	Version      string   `yaml:"version"      json:"version"`
	Dependencies []string `yaml:"dependencies" json:"dependencies"`
	Dependents   []string `yaml:"dependents,omitempty" json:"dependents,omitempty"`
	Level        int      `yaml:"level,omitempty"      json:"level,omitempty"`
	Release      *bool    `yaml:"release,omitempty"    json:"release,omitempty"`
}

// document is the top-level on-disk shape.
type document struct {
	Modules []moduleRecord `yaml:"modules" json:"modules"`
}

// FileRegistryRepository persists registries as YAML, JSON, or HCL
// files, chosen by extension. Writes go through a temp file and rename,
// so a failed run never leaves a half-written registry behind.
type FileRegistryRepository struct{}

// NewFileRegistryRepository creates the file-backed registry repository.
func NewFileRegistryRepository() *FileRegistryRepository {
	return &FileRegistryRepository{}
}

var _ repositories.RegistryRepository = (*FileRegistryRepository)(nil)

// Load reads and validates the registry file at path.
func (it *FileRegistryRepository) Load(path string) (*entities.Registry, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, &entities.LoadError{Path: path, Reason: "unknown format", Err: err}
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, &entities.LoadError{Path: path, Reason: "cannot read file", Err: readErr}
	}

	return Decode(data, format, path)
}

// Decode parses registry content in the given format and validates it.
// The path only labels errors.
func Decode(data []byte, format Format, path string) (*entities.Registry, error) {
	var modules []entities.Module
	var err error

	switch format {
	case FormatYAML:
		modules, err = decodeYAML(data)
	case FormatJSON:
		modules, err = decodeJSON(data)
	case FormatHCL:
		modules, err = decodeHCL(data, path)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, &entities.LoadError{Path: path, Reason: "malformed registry", Err: err}
	}

	registry, newErr := entities.NewRegistry(modules)
	if newErr != nil {
		return nil, &entities.LoadError{Path: path, Reason: "inconsistent registry", Err: newErr}
	}
	return registry, nil
}

// Save atomically rewrites the registry file in the format its
// extension names.
func (it *FileRegistryRepository) Save(path string, registry *entities.Registry) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatYAML:
		data, err = encodeYAML(registry)
	case FormatJSON:
		data, err = encodeJSON(registry)
	case FormatHCL:
		data = encodeHCL(registry)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	return writeAtomically(path, data)
}

func decodeYAML(data []byte) ([]entities.Module, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return recordsToModules(doc.Modules), nil
}

func decodeJSON(data []byte) ([]entities.Module, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return recordsToModules(doc.Modules), nil
}

func encodeYAML(registry *entities.Registry) ([]byte, error) {
	return yaml.Marshal(toDocument(registry))
}

func encodeJSON(registry *entities.Registry) ([]byte, error) {
	data, err := json.MarshalIndent(toDocument(registry), "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func recordsToModules(records []moduleRecord) []entities.Module {
	modules := make([]entities.Module, 0, len(records))
	for _, rec := range records {
		release := true
		if rec.Release != nil {
			release = *rec.Release
		}
		modules = append(modules, entities.Module{
			Name:         rec.Name,
			Version:      rec.Version,
			Dependencies: rec.Dependencies,
			Level:        rec.Level,
			Release:      release,
		})
	}
	return modules
}

// toDocument orders modules by level then name, the ordering the
// release pipeline consumes.
func toDocument(registry *entities.Registry) document {
	modules := registry.Modules()
	records := make([]moduleRecord, 0, len(modules))
	for _, m := range modules {
		rec := moduleRecord{
			Name:         m.Name,
			Version:      m.Version,
			Dependencies: m.Dependencies,
			Dependents:   m.Dependents,
			Level:        m.Level,
		}
		if !m.Release {
			release := false
			rec.Release = &release
		}
		records = append(records, rec)
	}
	return document{Modules: records}
}

// writeAtomically writes data to a temp file in the target directory
// and renames it over the destination.
func writeAtomically(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".registry-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %q: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write registry: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close registry temp file: %w", closeErr)
	}

	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace registry file: %w", renameErr)
	}
	return nil
}
