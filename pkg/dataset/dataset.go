// Package dataset loads architecture snapshots from JSON or YAML documents.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed snapshot.schema.json
var schemaJSON string

const schemaURL = "snapshot.schema.json"

var (
	// ErrDuplicateID is returned when an id repeats within one collection.
	ErrDuplicateID = errors.New("duplicate entity id")
	// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Format is the encoding of a snapshot document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Dataset is a loaded snapshot together with where it came from.
type Dataset struct {
	Path        string           `json:"path" toon:"path"`
	Name        string           `json:"name" toon:"name"`
	Fingerprint string           `json:"fingerprint" toon:"fingerprint"`
	Snapshot    *models.Snapshot `json:"-" toon:"-"`
}

// Loader validates and decodes snapshot documents.
// A Loader is safe for concurrent use once created.
type Loader struct {
	schema *jsonschema.Schema
}

// NewLoader compiles the embedded snapshot schema.
func NewLoader() (*Loader, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to register snapshot schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile snapshot schema: %w", err)
	}
	return &Loader{schema: sch}, nil
}

// Load reads, validates and decodes the snapshot at path.
func (l *Loader) Load(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	snap, err := l.Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Dataset{
		Path:        path,
		Name:        strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Fingerprint: Fingerprint(data),
		Snapshot:    snap,
	}, nil
}

// Parse validates and decodes a snapshot document held in memory.
func (l *Loader) Parse(data []byte, format Format) (*models.Snapshot, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := l.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("snapshot does not match schema: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := normalize(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// yamlToJSON re-encodes a YAML document so a single schema covers both formats.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("YAML document is not representable as JSON: %w", err)
	}
	return out, nil
}

// normalize defaults missing names to ids and rejects duplicate ids.
func normalize(snap *models.Snapshot) error {
	for i := range snap.Applications {
		defaultName(&snap.Applications[i])
	}
	for i := range snap.Topics {
		defaultName(&snap.Topics[i].Entity)
	}
	for i := range snap.Nodes {
		defaultName(&snap.Nodes[i])
	}
	for i := range snap.Libraries {
		defaultName(&snap.Libraries[i])
	}

	for _, kind := range models.Kinds {
		seen := make(map[string]struct{})
		for _, e := range snap.Entities(kind) {
			if _, dup := seen[e.ID]; dup {
				return fmt.Errorf("%w: %s %q", ErrDuplicateID, kind, e.ID)
			}
			seen[e.ID] = struct{}{}
		}
	}
	return nil
}

func defaultName(e *models.Entity) {
	if e.Name == "" {
		e.Name = e.ID
	}
}

// Discover expands directories into their snapshot files.
// Files are returned sorted; explicit file arguments are kept as given.
func Discover(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, err := FormatFromPath(entry.Name()); err == nil {
				found = append(found, filepath.Join(p, entry.Name()))
			}
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
