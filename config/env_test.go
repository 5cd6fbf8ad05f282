package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxsml/stagepipe/pipe"
)

type tuning struct {
	Workers        int
	ProcessTimeout time.Duration `split_words:"true"`
	Label          string
}

func TestNormalizeStage(t *testing.T) {
	tests := map[string]string{
		"broker":         "BROKER",
		"MedianFilter-0": "MEDIANFILTER_0",
		"picture rec":    "PICTURE_REC",
		"a.b":            "AB",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeStage(in), in)
	}
}

func TestLoader_Load(t *testing.T) {
	t.Setenv("STAGEPIPE_MEDIANFILTER_0_WORKERS", "4")
	t.Setenv("STAGEPIPE_MEDIANFILTER_0_PROCESS_TIMEOUT", "250ms")

	cfg := tuning{Workers: 1, Label: "keep"}
	require.NoError(t, Load("MedianFilter-0", &cfg))

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.ProcessTimeout)
	assert.Equal(t, "keep", cfg.Label, "unset variables keep defaults")
}

func TestLoader_Prefix(t *testing.T) {
	t.Setenv("MEDIANPIPE_SINK_LABEL", "custom")
	t.Setenv("STAGEPIPE_SINK_LABEL", "default")

	var cfg tuning
	require.NoError(t, Loader{Prefix: "medianpipe"}.Load("sink", &cfg))
	assert.Equal(t, "custom", cfg.Label)
}

func TestLoader_InvalidValue(t *testing.T) {
	t.Setenv("STAGEPIPE_BROKER_WORKERS", "many")

	var cfg tuning
	assert.Error(t, Load("broker", &cfg))
}

func TestLoader_Keys(t *testing.T) {
	keys := Keys("broker", &tuning{})
	assert.Equal(t, []string{
		"STAGEPIPE_BROKER_WORKERS",
		"STAGEPIPE_BROKER_PROCESS_TIMEOUT",
		"STAGEPIPE_BROKER_LABEL",
	}, keys)
}

func TestLoader_Overlay(t *testing.T) {
	t.Setenv("STAGEPIPE_PICTURERECORDER_1_TIMEOUT", "3s")

	base := pipe.Config{Name: "PictureRecorder-1", Timeout: time.Second, Interval: time.Millisecond}
	cfg, err := Loader{}.Overlay(base.Name, base)
	require.NoError(t, err)

	assert.Equal(t, "PictureRecorder-1", cfg.Name)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, time.Millisecond, cfg.Interval)
}
