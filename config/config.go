package config

import (
	"io/ioutil"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_ADDR           = ":8000"
	DEFAULT_WEB_PATH       = "web"
	DEFAULT_EXPORT_DIR     = "export"
	DEFAULT_PICK_RADIUS    = 0.25
	DEFAULT_ROTATION_SPEED = 0.02
	DEFAULT_ROLL_SPEED     = 0.1
)

// Viewer holds server and interaction settings.
type Viewer struct {
	Addr      string `yaml:"addr"`
	WebPath   string `yaml:"web_path"`
	Rig       string `yaml:"rig"`
	ExportDir string `yaml:"export_dir"`

	// radius of the cylinder every bone is picked with
	PickRadius float64 `yaml:"pick_radius"`
	// radians per dragged pixel
	RotationSpeed float64 `yaml:"rotation_speed"`
	// radians per roll step
	RollSpeed float64 `yaml:"roll_speed"`
}

func Default() Viewer {
	return Viewer{
		Addr:          DEFAULT_ADDR,
		WebPath:       DEFAULT_WEB_PATH,
		ExportDir:     DEFAULT_EXPORT_DIR,
		PickRadius:    DEFAULT_PICK_RADIUS,
		RotationSpeed: DEFAULT_ROTATION_SPEED,
		RollSpeed:     DEFAULT_ROLL_SPEED,
	}
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Viewer, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Viewer{}, errors.Wrapf(err, "Failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Viewer{}, err
	}
	return cfg, nil
}

func Load(path string) (Viewer, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Viewer{}, errors.Wrapf(err, "Cannot read config %q", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Viewer{}, errors.Wrapf(err, "Config %q", path)
	}
	return cfg, nil
}

func (v Viewer) Validate() error {
	if v.PickRadius <= 0 {
		return errors.Errorf("pick_radius must be positive, got %v", v.PickRadius)
	}
	if v.RotationSpeed <= 0 {
		return errors.Errorf("rotation_speed must be positive, got %v", v.RotationSpeed)
	}
	if v.RollSpeed <= 0 {
		return errors.Errorf("roll_speed must be positive, got %v", v.RollSpeed)
	}
	return nil
}

var (
	currentLock sync.RWMutex
	current     = Default()
)

func Get() Viewer {
	currentLock.RLock()
	defer currentLock.RUnlock()
	return current
}

func Set(v Viewer) {
	currentLock.Lock()
	defer currentLock.Unlock()
	current = v
}
