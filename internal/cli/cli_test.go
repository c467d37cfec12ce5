package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingly-dev/tingly-porter/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(BuildInfo{Version: "1.2.3", GitCommit: "abc123"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "porter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    1.2.3")
	assert.Contains(t, out, "Git Commit: abc123")
}

func TestFormatsCommandAll(t *testing.T) {
	out, err := execute(t, "formats", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Built-in formats")
	assert.Contains(t, out, "JSON Lines")
	assert.Contains(t, out, "Base64 (TGB64)")
	assert.Contains(t, out, "LARGE EXPORT")
}

func TestFormatsCommandUsesConfig(t *testing.T) {
	path := writeConfig(t, "formats:\n  import: [csv]\n  export: [csv, json]\n")
	out, err := execute(t, "--config", path, "formats")
	require.NoError(t, err)

	assert.Contains(t, out, "Import")
	assert.Contains(t, out, "Bulk export action")
	assert.Contains(t, out, ".csv")
	assert.NotContains(t, out, "Excel")
	assert.NotContains(t, out, "JSON Lines")
}

func TestCheckConfig(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  bool
		contains []string
	}{
		{
			name:     "valid",
			content:  "server:\n  port: 9100\nformats:\n  export: [csv, json]\n",
			contains: []string{"Configuration is valid", "127.0.0.1:9100", "Streaming: [csv]", "Action:    [csv json]"},
		},
		{
			name:     "empty import list",
			content:  "formats:\n  import: []\n",
			contains: []string{"Configuration is valid", "Warning"},
		},
		{
			name:     "unknown format",
			content:  "formats:\n  import: [xml]\n",
			wantErr:  true,
			contains: []string{"Configuration is invalid"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "--config", writeConfig(t, tt.content), "check-config")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestCheckConfigDefaults(t *testing.T) {
	out, err := execute(t, "check-config")
	require.NoError(t, err)
	assert.Contains(t, out, "built-in defaults")
}

func TestServeRejectsInvalidPort(t *testing.T) {
	_, err := execute(t, "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestServeFlagsApply(t *testing.T) {
	flags := &serveFlags{}
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.register(fs)
	require.NoError(t, fs.Parse([]string{"--port", "9200", "--log-file", "/tmp/porter.log", "--debug"}))

	cfg := config.DefaultConfig()
	flags.apply(fs, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "unset flags keep config values")
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "/tmp/porter.log", cfg.Log.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, flags.watch)
}
