package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/mavg/internal/stream"
)

var want = []stream.Request{
	{Window: 3, Input: "data/in1", Output: "data/out1"},
	{Window: 5, Input: "-", Output: "-"},
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{
			name: "yaml",
			ext:  ".yaml",
			data: `
streams:
  - window: 3
    input: data/in1
    output: data/out1
  - window: 5
    input: "-"
    output: "-"
`,
		},
		{
			name: "yml upper case",
			ext:  ".YML",
			data: `
streams:
  - {window: 3, input: data/in1, output: data/out1}
  - {window: 5, input: "-", output: "-"}
`,
		},
		{
			name: "toml",
			ext:  ".toml",
			data: `
[[streams]]
window = 3
input = "data/in1"
output = "data/out1"

[[streams]]
window = 5
input = "-"
output = "-"
`,
		},
		{
			name: "json",
			ext:  ".json",
			data: `{"streams": [
				{"window": 3, "input": "data/in1", "output": "data/out1"},
				{"window": 5, "input": "-", "output": "-"}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.ext, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		data    string
		wantErr error
	}{
		{name: "unknown extension", ext: ".ini", data: "", wantErr: ErrUnsupportedFormat},
		{name: "zero window", ext: ".json", data: `{"streams":[{"window":0,"input":"a","output":"b"}]}`, wantErr: stream.ErrInvalidWindow},
		{name: "missing output", ext: ".yaml", data: "streams:\n  - window: 2\n    input: a\n", wantErr: stream.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.ext, []byte(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Parse(".toml", []byte("[[streams]\nwindow ="))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streams.yaml")
	require.NoError(t, os.WriteFile(path, []byte("streams:\n  - window: 2\n    input: a\n    output: b\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []stream.Request{{Window: 2, Input: "a", Output: "b"}}, got)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	got, err := Parse(".json", []byte(`{"streams": []}`))

	require.NoError(t, err)
	assert.Empty(t, got)
}
