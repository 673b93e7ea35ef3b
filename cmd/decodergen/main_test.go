package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testManifest = `
target: v3
ports:
  2:
    body: |
      var vars = {};
      var offset = 0;
      var dataView = new DataView(buffer.buffer, buffer.byteOffset, buffer.length);
      vars.v = dataView.getUint16(offset, true);
      return vars;
  9:
    body_file: port9.js
`

const port9 = `var vars = {};
var offset = 0;
var dataView = new DataView(buffer.buffer, buffer.byteOffset, buffer.length);
vars.n = dataView.getBigUint64(offset, false);
return vars;
`

func writeManifest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "port9.js"), []byte(port9), 0o644))
	path := filepath.Join(dir, "ports.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))
	return path
}

func TestRun_Stdout(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{manifest: writeManifest(t)}, zap.NewNop(), &out)
	require.NoError(t, err)

	src := out.String()
	assert.Contains(t, src, "function Decode (fPort, buffer, variables) {")
	assert.Contains(t, src, "case 2: return parsePort2(buffer);")
	assert.Contains(t, src, "case 9: return parsePort9(buffer);")
	assert.Contains(t, src, "function readUint32BE(")
	assert.NotContains(t, src, "DataView")
}

func TestRun_TargetOverride(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{manifest: writeManifest(t), target: "v4"}, zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "function decodeUplink (input) {")

	err = run(context.Background(), options{manifest: writeManifest(t), target: "v7"}, zap.NewNop(), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target "v7"`)
}

func TestRun_OutFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "decoder.js")
	var stdout bytes.Buffer
	err := run(context.Background(), options{manifest: writeManifest(t), out: outPath, concurrency: 2}, zap.NewNop(), &stdout)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "function parsePort9(buffer){")
}

func TestRun_List(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{manifest: writeManifest(t), list: true}, zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Shell: v3 (Decode)")
	assert.Contains(t, out.String(), "  2 parsePort2 {Uint16LE}")
	assert.Contains(t, out.String(), "  9 parsePort9 {Uint32BE BigUint64BE}")
	assert.Contains(t, out.String(), "Codecs: {Uint16LE Uint32BE BigUint64BE}")
}

func TestRun_MissingManifest(t *testing.T) {
	err := run(context.Background(), options{manifest: filepath.Join(t.TempDir(), "none.yaml")}, zap.NewNop(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load manifest")
}

const subroutineManifest = `
ports:
  4:
    body: |
      var vars = {};
      var offset = 0;
      var dataView = new DataView(buffer.buffer, buffer.byteOffset, buffer.length);
      vars.v = dataView.getUint8(offset);
      vars.v = imports[0].call(vars, vars.v);
      return vars;
    subroutines:
      - "function (v) { const scaled = v / 10; return scaled; }"
`

func TestRun_DownlevelCommand(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	path := filepath.Join(t.TempDir(), "ports.yaml")
	require.NoError(t, os.WriteFile(path, []byte(subroutineManifest), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), options{manifest: path}, zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "var scaled = v / 10;")
	assert.NotContains(t, out.String(), "const")

	out.Reset()
	err = run(context.Background(), options{manifest: path, downlevelCmd: "cat"}, zap.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "function (v) { const scaled = v / 10; return scaled; }")

	err = run(context.Background(), options{manifest: path, downlevelCmd: "  "}, zap.NewNop(), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty downlevel command")
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
		ok   bool
	}{
		{"3412", []byte{0x34, 0x12}, true},
		{"34 12", []byte{0x34, 0x12}, true},
		{"0x34,0x12", []byte{0x34, 0x12}, true},
		{"34:12", []byte{0x34, 0x12}, true},
		{"", []byte{}, true},
		{"341", nil, false},
		{"zz", nil, false},
	}
	for _, tt := range tests {
		got, err := parsePayload(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestInteractiveModel(t *testing.T) {
	m := newInteractiveModel(options{manifest: writeManifest(t)}, zap.NewNop())
	assert.Equal(t, "Generating decoder...", m.View())

	msg := m.loadDecoder()
	loaded, ok := msg.(loadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)
	m.Update(loaded)
	require.Len(t, m.ports, 2)
	assert.Contains(t, m.View(), "Select a port")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateInputPayload, m.state)

	m.input.SetValue("34 12")
	m.Update(m.decode())
	assert.Equal(t, stateShowResult, m.state)
	require.NoError(t, m.err)
	assert.Equal(t, `{"v":4660}`, m.result)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateSelectPort, m.state)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("zz")
	m.Update(m.decode())
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "Error")
}
