package mapschema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadMapConfigFile reads a MapConfig from disk, decoding as YAML or JSON
// based on the file extension. It returns a wrapped error on any I/O or
// decode failure; callers that need validation reasons should pass the
// result to Validate separately.
func LoadMapConfigFile(path string) (*MapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read map config %s", path)
	}

	var cfg MapConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "decode yaml map config %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "decode json map config %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported map config extension %q", ext)
	}

	return &cfg, nil
}
