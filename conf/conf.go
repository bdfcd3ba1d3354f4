package conf

import (
	"os"

	"github.com/pkg/errors"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Target describes the machine model the front end types against.
type Target struct {
	PointerSize      int `yaml:"pointer_size"`
	PointerAlignment int `yaml:"pointer_alignment"`
	// Exposed through types.DefaultAlign; the layout computer does not
	// consult it, aggregates pad to natural alignment unless a pragma is set.
	DefaultAlign int `yaml:"default_align"`
	// Parsing short-circuits once this many errors were reported.
	ErrorLimit int `yaml:"error_limit"`
}

func Default() Target {
	return Target{
		PointerSize:      8,
		PointerAlignment: 8,
		DefaultAlign:     4,
		ErrorLimit:       10,
	}
}

// Load reads the target description from path (optional, "" means defaults)
// and applies XOCFE_* environment overrides on top.
func Load(path string) (Target, error) {
	t := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return t, errors.Wrap(err, "failed to read target conf")
		}
		if err := yaml.Unmarshal(data, &t); err != nil {
			return t, errors.Wrapf(err, "malformed target conf %s", path)
		}
	}
	t.PointerSize = env.Int("XOCFE_POINTER_SIZE", t.PointerSize)
	t.PointerAlignment = env.Int("XOCFE_POINTER_ALIGNMENT", t.PointerAlignment)
	t.DefaultAlign = env.Int("XOCFE_DEFAULT_ALIGN", t.DefaultAlign)
	t.ErrorLimit = env.Int("XOCFE_ERROR_LIMIT", t.ErrorLimit)
	if t.PointerSize != 4 && t.PointerSize != 8 {
		return t, errors.Errorf("unsupported pointer size %d", t.PointerSize)
	}
	return t, nil
}
