package bench

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmssp/pkg/metrics"
	"bmssp/pkg/sssp"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDefaultConfigSizes(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	var sizes []uint32
	for i := range cfg.Count {
		sizes = append(sizes, cfg.SizeOf(i))
	}
	assert.Equal(t, []uint32{4, 4, 5, 5, 6, 6, 7, 7, 8, 8}, sizes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero count", func(c *Config) { c.Count = 0 }},
		{"zero step", func(c *Config) { c.StepEvery = 0 }},
		{"density above one", func(c *Config) { c.Density = 1.5 }},
		{"negative density", func(c *Config) { c.Density = -0.1 }},
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"source outside first graph", func(c *Config) { c.Source = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	yml := []byte("start_size: 10\ndensity: 0.2\ncount: 3\nverify_oracle: true\n")
	require.NoError(t, os.WriteFile(path, yml, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), cfg.StartSize)
	assert.Equal(t, 0.2, cfg.Density)
	assert.Equal(t, 3, cfg.Count)
	assert.True(t, cfg.VerifyOracle)
	// Unset keys keep their defaults.
	assert.Equal(t, 2, cfg.StepEvery)
	assert.Equal(t, 9, cfg.Precision)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("count: [1, 2"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("density: 2\n"), 0o644))
	_, err = LoadConfig(invalid)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunnerAgrees(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 8
	cfg.StartSize = 10
	cfg.StepSize = 7
	cfg.Density = 0.3
	cfg.VerifyOracle = true
	cfg.Workers = 3

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r, err := NewRunner(cfg, quietLogger(), m)
	require.NoError(t, err)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, cfg.Count)
	assert.NotEmpty(t, report.RunID)
	assert.Zero(t, report.Mismatches())
	for i, res := range report.Results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, cfg.SizeOf(i), res.Vertices)
		assert.True(t, res.OracleChecked)
		assert.Equal(t, sssp.AlgorithmBmssp, res.Stats.Algorithm)
		if res.Vertices <= cfg.PrintLimit {
			assert.Len(t, res.DijkstraDist, int(res.Vertices))
		} else {
			assert.Nil(t, res.DijkstraDist)
		}
	}

	assert.Equal(t, float64(cfg.Count), testutil.ToFloat64(m.ComparisonsTotal.WithLabelValues("match")))
	assert.Equal(t, float64(cfg.Count), testutil.ToFloat64(m.RunsTotal.WithLabelValues("bmssp")))

	var out bytes.Buffer
	require.NoError(t, report.WriteText(&out))
	text := out.String()
	assert.Contains(t, text, report.RunID)
	assert.Contains(t, text, "--- Test 8 (vertices: 38")
	assert.Contains(t, text, "0 mismatches")
	assert.Contains(t, text, "Distances (bmssp):")
}

func TestRunnerDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 4

	run := func() *Report {
		r, err := NewRunner(cfg, quietLogger(), nil)
		require.NoError(t, err)
		report, err := r.Run(context.Background())
		require.NoError(t, err)
		return report
	}
	a, b := run(), run()
	for i := range a.Results {
		assert.Equal(t, a.Results[i].Edges, b.Results[i].Edges)
		assert.Equal(t, a.Results[i].BmsspDist, b.Results[i].BmsspDist)
	}
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunnerCanceled(t *testing.T) {
	r, err := NewRunner(DefaultConfig(), quietLogger(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 0
	_, err := NewRunner(cfg, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFirstDivergence(t *testing.T) {
	inf := math.Inf(1)
	assert.Nil(t, firstDivergence([]float64{0, 1, inf}, []float64{0, 1, inf}, 0))
	assert.Nil(t, firstDivergence([]float64{0, 1}, []float64{0, 1 + 1e-12}, 1e-9))

	d := firstDivergence([]float64{0, 1, 2, 3}, []float64{0, 1, 2.5, 9}, 1e-9)
	require.NotNil(t, d)
	assert.Equal(t, Divergence{Vertex: 2, Want: 2, Got: 2.5}, *d)

	d = firstDivergence([]float64{0, inf}, []float64{0, 4}, 1e-9)
	require.NotNil(t, d)
	assert.Equal(t, uint32(1), d.Vertex)
}

func TestWriteTextDivergence(t *testing.T) {
	report := &Report{
		RunID: "test-run",
		Results: []Result{{
			Index:        0,
			Vertices:     2,
			Divergence:   &Divergence{Vertex: 1, Want: 3, Got: math.Inf(1)},
			DijkstraDist: []float64{0, 3},
			BmsspDist:    []float64{0, math.Inf(1)},
		}},
	}
	var out bytes.Buffer
	require.NoError(t, report.WriteText(&out))
	text := out.String()
	assert.Contains(t, text, "[DIVERGENCE] vertex 1 -> dijkstra: 3 | bmssp: INF")
	assert.Contains(t, text, "[FAIL]")
	assert.Contains(t, text, "Distances (bmssp):    0 INF")
	assert.Contains(t, text, "1 mismatches")
}
