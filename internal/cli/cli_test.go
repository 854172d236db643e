package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/mavg/internal/codec"
	"github.com/GriffinCanCode/mavg/internal/scheduler"
	"github.com/GriffinCanCode/mavg/internal/stream"
)

func writeValues(t *testing.T, path string, values []float64) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, codec.Encode(values), 0o644))
}

func testIO(stdin []byte) (IO, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return IO{Stdin: bytes.NewReader(stdin), Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

func TestRunFileStream(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	writeValues(t, in, []float64{1, 2, 3, 4, 5})
	stdio, _, stderr := testIO(nil)

	err := Run(context.Background(), []string{"3," + in + "," + out}, stdio)

	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, codec.Decode(data))
	assert.Empty(t, stderr.String(), "a quiet run logs nothing")
}

func TestRunStdinToStdoutMatchesFile(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	values := []float64{0.5, 1.25, -3, 8, 13.5, 21, 34}
	writeValues(t, in, values)

	fileIO, _, _ := testIO(nil)
	require.NoError(t, Run(context.Background(), []string{"3," + in + "," + out}, fileIO))

	stdio, stdout, _ := testIO(codec.Encode(values))
	require.NoError(t, Run(context.Background(), []string{"3,-,-"}, stdio))

	want, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, stdout.Bytes())
}

func TestRunTimeoutReportsMissing(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	missing := filepath.Join(dir, "never")
	writeValues(t, in, []float64{1, 2, 3, 4, 5})
	stdio, _, stderr := testIO(nil)

	err := Run(context.Background(), []string{
		"-timeout", "1",
		"3," + in + "," + out,
		"3," + missing + "," + filepath.Join(dir, "never.out"),
	}, stdio)

	require.Error(t, err)
	assert.ErrorIs(t, err, scheduler.ErrDeadlineExceeded)
	assert.Equal(t, 1, ExitCode(err))
	assert.Equal(t, 1, strings.Count(err.Error(), missing))
	assert.Contains(t, stderr.String(), "sources not found within deadline")

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, []float64{2, 3, 4}, codec.Decode(data))
}

func TestRunVerboseLogsToStderr(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	writeValues(t, in, []float64{1, 2, 3})

	for _, flagName := range []string{"-v", "--verbose"} {
		t.Run(flagName, func(t *testing.T) {
			stdio, stdout, stderr := testIO(nil)

			require.NoError(t, Run(context.Background(), []string{flagName, "2," + in + "," + out}, stdio))

			logs := stderr.String()
			assert.Contains(t, logs, "stream added")
			assert.Contains(t, logs, "numbers decoded")
			assert.Contains(t, logs, "averages written")
			assert.Contains(t, logs, `"run_id"`)
			assert.Zero(t, stdout.Len())
		})
	}
}

func TestRunLogFile(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	logPath := filepath.Join(dir, "mavg.log")
	writeValues(t, in, []float64{1, 2, 3})
	stdio, _, stderr := testIO(nil)

	require.NoError(t, Run(context.Background(), []string{"-v", "-log-file", logPath, "2," + in + "," + out}, stdio))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pass complete")
	assert.Empty(t, stderr.String())
}

func TestRunNegativePollIntervalSkipsWait(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	writeValues(t, in, []float64{1, 2, 3, 4, 5})
	stdio, _, _ := testIO(nil)

	require.NoError(t, Run(context.Background(), []string{"-poll-interval", "-1ms", "3," + in + "," + out}, stdio))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, codec.Decode(data))
}

func TestRunManifestAndMetricsFile(t *testing.T) {
	dir := t.TempDir()
	in1, out1 := filepath.Join(dir, "in1"), filepath.Join(dir, "out1")
	in2, out2 := filepath.Join(dir, "in2"), filepath.Join(dir, "out2")
	writeValues(t, in1, []float64{1, 2, 3, 4, 5})
	writeValues(t, in2, []float64{2, 4})

	manifestPath := filepath.Join(dir, "streams.toml")
	doc := "[[streams]]\nwindow = 2\ninput = \"" + in2 + "\"\noutput = \"" + out2 + "\"\n"
	require.NoError(t, os.WriteFile(manifestPath, []byte(doc), 0o644))
	metricsPath := filepath.Join(dir, "mavg.prom")
	stdio, _, _ := testIO(nil)

	err := Run(context.Background(), []string{
		"-manifest", manifestPath,
		"-metrics-file", metricsPath,
		"3," + in1 + "," + out1,
	}, stdio)
	require.NoError(t, err)

	data, err := os.ReadFile(out2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, codec.Decode(data))

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "mavg_activations_total 2")
	assert.Contains(t, string(prom), `mavg_averages_written_total{output="`+out1+`"} 3`)
}

func TestRunEnvironmentTimeout(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MAVG_TIMEOUT", "1")
	stdio, _, _ := testIO(nil)

	err := Run(context.Background(), []string{"1," + filepath.Join(dir, "nope") + "," + filepath.Join(dir, "out")}, stdio)

	assert.ErrorIs(t, err, scheduler.ErrDeadlineExceeded)
}

func TestRunConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "malformed triple", args: []string{"3,onlyone"}, wantErr: stream.ErrInvalidRequest},
		{name: "zero window", args: []string{"0,a,b"}, wantErr: stream.ErrInvalidWindow},
		{name: "duplicate input", args: []string{"1,a,b", "2,a,c"}, wantErr: stream.ErrDuplicateInput},
		{name: "negative timeout", args: []string{"-timeout", "-1", "1,a,b"}},
		{name: "unknown flag", args: []string{"-frobnicate"}},
		{name: "missing manifest", args: []string{"-manifest", "/nonexistent/streams.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdio, _, _ := testIO(nil)

			err := Run(context.Background(), tt.args, stdio)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 2, ExitCode(err))
		})
	}
}

func TestRunNoStreams(t *testing.T) {
	stdio, _, _ := testIO(nil)

	assert.NoError(t, Run(context.Background(), nil, stdio))
}

func TestRunHelp(t *testing.T) {
	stdio, _, stderr := testIO(nil)

	err := Run(context.Background(), []string{"-h"}, stdio)

	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Equal(t, 0, ExitCode(err))
	assert.Contains(t, stderr.String(), "Usage: mavg")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("io failure")))
	assert.Equal(t, 2, ExitCode(ErrConfig))
	assert.Equal(t, 1, ExitCode(context.Canceled))
}
