package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"viewck/internal/sema"
)

var (
	// ErrInvalidManifest wraps every decoding or validation failure.
	ErrInvalidManifest = errors.New("invalid manifest")
	// ErrToolTooOld means [tool].requires rejects the running version.
	ErrToolTooOld = errors.New("viewck version does not satisfy manifest")
)

// Manifest is a decoded viewck.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Tool        ToolConfig        `toml:"tool"`
	Check       CheckConfig       `toml:"check"`
	Conventions ConventionsConfig `toml:"conventions"`
	Resilience  ResilienceConfig  `toml:"resilience"`
}

type ToolConfig struct {
	// Requires is a semver constraint, e.g. ">= 0.1.0".
	Requires string `toml:"requires"`
}

type CheckConfig struct {
	Liveness string `toml:"liveness"`
	// MaxDiagnostics caps the diagnostics bag; 0 keeps the CLI default.
	MaxDiagnostics int  `toml:"max_diagnostics"`
	WarnRuntime    bool `toml:"warn_runtime_checked"`
}

type ConventionsConfig struct {
	Parameter string `toml:"parameter"`
	Receiver  string `toml:"receiver"`
}

type ResilienceConfig struct {
	Frozen []string `toml:"frozen"`
}

// Load finds viewck.toml above startDir and decodes it. ok is false when
// there is no manifest; that is not an error.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := Decode(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// Decode reads one manifest file. Unknown keys are rejected.
func Decode(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w: %w", path, ErrInvalidManifest, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalidManifest, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := sema.ParseLiveness(c.Check.Liveness); err != nil {
		return fmt.Errorf("%w: [check].liveness: %w", ErrInvalidManifest, err)
	}
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: [check].max_diagnostics must not be negative", ErrInvalidManifest)
	}
	if _, err := sema.ParseConvention(c.Conventions.Parameter); err != nil {
		return fmt.Errorf("%w: [conventions].parameter: %w", ErrInvalidManifest, err)
	}
	if _, err := sema.ParseConvention(c.Conventions.Receiver); err != nil {
		return fmt.Errorf("%w: [conventions].receiver: %w", ErrInvalidManifest, err)
	}
	if strings.TrimSpace(c.Tool.Requires) != "" {
		if _, err := semver.NewConstraint(c.Tool.Requires); err != nil {
			return fmt.Errorf("%w: [tool].requires: %w", ErrInvalidManifest, err)
		}
	}
	return nil
}

// CheckTool verifies the running tool version against [tool].requires.
// Pre-release suffixes are ignored so that development builds qualify.
func (c *Config) CheckTool(toolVersion string) error {
	req := strings.TrimSpace(c.Tool.Requires)
	if req == "" {
		return nil
	}
	con, err := semver.NewConstraint(req)
	if err != nil {
		return fmt.Errorf("%w: [tool].requires: %w", ErrInvalidManifest, err)
	}
	v, err := semver.NewVersion(toolVersion)
	if err != nil {
		return fmt.Errorf("tool version %q: %w", toolVersion, err)
	}
	release, err := v.SetPrerelease("")
	if err != nil {
		return fmt.Errorf("tool version %q: %w", toolVersion, err)
	}
	if !con.Check(&release) {
		return fmt.Errorf("%w: %s does not match %q", ErrToolTooOld, toolVersion, req)
	}
	return nil
}

// Apply copies manifest settings into opts. Empty values keep the
// defaults already in opts.
func (c *Config) Apply(opts *sema.Options) error {
	if strings.TrimSpace(c.Check.Liveness) != "" {
		mode, err := sema.ParseLiveness(c.Check.Liveness)
		if err != nil {
			return err
		}
		opts.Liveness = mode
	}
	if strings.TrimSpace(c.Conventions.Parameter) != "" {
		conv, err := sema.ParseConvention(c.Conventions.Parameter)
		if err != nil {
			return err
		}
		opts.DefaultParam = conv
	}
	if strings.TrimSpace(c.Conventions.Receiver) != "" {
		conv, err := sema.ParseConvention(c.Conventions.Receiver)
		if err != nil {
			return err
		}
		opts.DefaultReceiver = conv
	}
	if len(c.Resilience.Frozen) > 0 {
		opts.Frozen = append([]string(nil), c.Resilience.Frozen...)
	}
	if c.Check.WarnRuntime {
		opts.WarnRuntimeChecked = true
	}
	return nil
}

// Template is what `viewck init` writes.
func Template(toolVersion string) string {
	req := ""
	if v, err := semver.NewVersion(toolVersion); err == nil {
		req = fmt.Sprintf(">= %d.%d.0", v.Major(), v.Minor())
	}
	var sb strings.Builder
	sb.WriteString("[tool]\n")
	fmt.Fprintf(&sb, "requires = %q\n\n", req)
	sb.WriteString("[check]\n")
	sb.WriteString("liveness = \"last-use\"\n")
	sb.WriteString("max_diagnostics = 100\n\n")
	sb.WriteString("[conventions]\n")
	sb.WriteString("parameter = \"borrowing\"\n")
	sb.WriteString("receiver = \"borrowing\"\n\n")
	sb.WriteString("[resilience]\n")
	sb.WriteString("frozen = []\n")
	return sb.String()
}
