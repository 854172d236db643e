// Package manifest loads stream requests from a YAML, TOML or JSON file.
//
// The format is chosen by file extension:
//
//	streams:
//	  - window: 3
//	    input: data/in
//	    output: data/out
//
// TOML uses [[streams]] tables and JSON a {"streams": [...]} object.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/mavg/internal/stream"
)

var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// Manifest is the on-disk document.
type Manifest struct {
	Streams []stream.Request `json:"streams" yaml:"streams" toml:"streams"`
}

// Load reads path and returns its stream requests in file order.
func Load(path string) ([]stream.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(filepath.Ext(path), data)
}

// Parse decodes data according to ext (".yaml", ".yml", ".toml", ".json")
// and validates every request.
func Parse(ext string, data []byte) ([]stream.Request, error) {
	var m Manifest
	var err error

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	case ".json":
		err = sonic.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s manifest: %w", strings.TrimPrefix(ext, "."), err)
	}

	for i, req := range m.Streams {
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("manifest stream %d: %w", i, err)
		}
	}
	return m.Streams, nil
}
