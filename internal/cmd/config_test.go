package cmd

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMapFromGlobals(t *testing.T) {
	got := buildMapFromStruct(reflect.TypeOf(Globals{}))
	logSection, ok := got["log"].(map[string]any)
	require.True(t, ok, "log flags nest under their prefix")
	assert.Equal(t, "info", logSection["level"])
	assert.Equal(t, "", logSection["file"])

	// Selection flags embed without a prefix, so they land at top level.
	assert.Contains(t, got, "serialPort")
	assert.Equal(t, int64(0), got["fanIndex"])
	assert.Equal(t, false, got["traceWire"])
}

func TestConfigInitWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{"json", "yaml", "toml"} {
		dest := filepath.Join(dir, "fanctl."+format)
		c := &ConfigInit{Format: format, Output: dest}
		require.NoError(t, c.Run(), format)
		assert.FileExists(t, dest)

		// A second run must refuse to clobber without --force.
		assert.Error(t, c.Run(), format)
		c.Force = true
		assert.NoError(t, c.Run(), format)
	}
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, "yaml", normalizeFormat("YML"))
	assert.Equal(t, "toml", normalizeFormat("toml"))
	assert.Equal(t, "", normalizeFormat("ini"))
}

func TestCLIValidate(t *testing.T) {
	cli := &CLI{}
	assert.NoError(t, cli.Validate())

	cli.Select.FanIndex = 3
	assert.Error(t, cli.Validate())
	cli.Select.FanIndex = -1
	assert.Error(t, cli.Validate())
}

func TestSetCmdValidate(t *testing.T) {
	assert.NoError(t, (&SetCmd{Speed: 0}).Validate())
	assert.NoError(t, (&SetCmd{Speed: 100}).Validate())
	assert.Error(t, (&SetCmd{Speed: -0.5}).Validate())
	assert.Error(t, (&SetCmd{Speed: 100.5}).Validate())
	assert.Error(t, (&SetFrequencyCmd{Freq: 0}).Validate())
	assert.NoError(t, (&SetFrequencyCmd{Freq: 25000}).Validate())
}
