package widgetprefs

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/default.yaml
var defaultCatalog []byte

// catalogFile is the on-disk shape of a widget catalog.
type catalogFile struct {
	Widgets []Widget `yaml:"widgets"`
}

// LoadCatalog parses a YAML (or JSON) widget catalog. Unknown fields are
// rejected so that typos in a catalog fail at startup.
func LoadCatalog(r io.Reader) ([]Widget, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog", ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrInvalidInput, err)
	}
	return f.Widgets, nil
}

// NewRegistryFromCatalog parses a catalog and builds a Registry from it.
func NewRegistryFromCatalog(r io.Reader) (*Registry, error) {
	widgets, err := LoadCatalog(r)
	if err != nil {
		return nil, err
	}
	return NewRegistry(widgets)
}

// NewDefaultRegistry builds a Registry from the built-in dashboard catalog.
// Each call returns a new instance.
func NewDefaultRegistry() (*Registry, error) {
	return NewRegistryFromCatalog(bytes.NewReader(defaultCatalog))
}
