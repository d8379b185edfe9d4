package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewck/internal/sema"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	file := filepath.Join(nested, "main.vw")
	require.NoError(t, os.WriteFile(file, []byte("fn f();"), 0o600))

	for _, start := range []string{nested, file} {
		got, ok, err := FindManifest(start)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, path, got)
	}

	dir, ok, err := FindProjectRoot(nested)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, root, dir)
}

func TestLoadWithoutManifest(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestLoadAndApply(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[tool]
requires = ">= 0.1.0"

[check]
liveness = "lexical"
max_diagnostics = 20
warn_runtime_checked = true

[conventions]
parameter = "consuming"

[resilience]
frozen = ["Remote"]
`)
	m, ok, err := Load(root)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, root, m.Root)
	assert.Equal(t, 20, m.Config.Check.MaxDiagnostics)

	opts := sema.DefaultOptions()
	require.NoError(t, m.Config.Apply(&opts))
	assert.Equal(t, sema.LivenessLexical, opts.Liveness)
	assert.Equal(t, sema.ConvConsuming, opts.DefaultParam)
	assert.Equal(t, sema.ConvBorrowing, opts.DefaultReceiver)
	assert.Equal(t, []string{"Remote"}, opts.Frozen)
	assert.True(t, opts.WarnRuntimeChecked)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[check\n"},
		{"unknown key", "[check]\ncolour = true\n"},
		{"liveness", "[check]\nliveness = \"forever\"\n"},
		{"convention", "[conventions]\nreceiver = \"shared\"\n"},
		{"constraint", "[tool]\nrequires = \"not a version\"\n"},
		{"negative cap", "[check]\nmax_diagnostics = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.body)
			_, err := Decode(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}

func TestCheckTool(t *testing.T) {
	cfg := Config{Tool: ToolConfig{Requires: ">= 0.2.0"}}
	assert.NoError(t, cfg.CheckTool("0.2.0"))
	assert.NoError(t, cfg.CheckTool("0.3.1-dev"))
	assert.ErrorIs(t, cfg.CheckTool("0.1.9"), ErrToolTooOld)
	assert.Error(t, cfg.CheckTool("banana"))

	var empty Config
	assert.NoError(t, empty.CheckTool("anything"))
}

func TestTemplateDecodes(t *testing.T) {
	path := writeManifest(t, t.TempDir(), Template("0.4.2-dev"))
	cfg, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, ">= 0.4.0", cfg.Tool.Requires)
	assert.NoError(t, cfg.CheckTool("0.4.2"))
}

func TestOptionsKey(t *testing.T) {
	a := sema.DefaultOptions()
	b := sema.DefaultOptions()
	assert.Equal(t, OptionsKey("1.0.0", &a), OptionsKey("1.0.0", &b))

	b.Liveness = sema.LivenessLexical
	assert.NotEqual(t, OptionsKey("1.0.0", &a), OptionsKey("1.0.0", &b))
	assert.NotEqual(t, OptionsKey("1.0.0", &a), OptionsKey("1.0.1", &a))

	var content Digest
	assert.NotEqual(t, Combine(content, []byte("x")), Combine(content, []byte("y")))
}
