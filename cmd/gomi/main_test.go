package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/gomi-ai/pkg/config"
	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	loaded, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "ja", loaded.App.Language)
	assert.NotEmpty(t, loaded.API.BaseURL)
}

func TestLoadConfig_PicksUpLocalFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultConfigPath),
		[]byte("app:\n  language: en\n"), 0o644))

	loaded, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "en", loaded.App.Language)
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildComponents_WithoutS3(t *testing.T) {
	cfg = config.Default()
	lang = gomi.LangEnglish
	t.Cleanup(func() { cfg = nil })

	app, err := buildComponents(events.NopEmitter{})
	require.NoError(t, err)
	assert.Nil(t, app.storage)
	assert.Equal(t, gomi.LangEnglish, app.store.Language())

	_, err = app.source.Open(context.Background(), "s3://photos/can.jpg")
	assert.ErrorContains(t, err, "not configured")
}

func TestPrintNotes(t *testing.T) {
	emitter := events.NewChanEmitter(4)
	ctx := context.Background()
	emitter.Emit(ctx, events.New(events.EventCompressed, events.CompressionData{
		Applied: true, OriginalSize: 6 << 20, OutputSize: 1 << 20, Width: 1920, Height: 1080,
	}))
	emitter.Emit(ctx, events.New(events.EventCompressed, events.CompressionData{Reason: "decode failed"}))
	emitter.Emit(ctx, events.New(events.EventPhaseChanged, events.PhaseData{From: "idle", To: "previewing"}))
	emitter.Close()

	var buf bytes.Buffer
	printNotes(&buf, emitter.Subscribe())

	assert.Equal(t,
		"· Compressed 6.00MB → 1.00MB (1920x1080)\n· Sent original image: decode failed\n",
		buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, "can.jpg", &gomi.ClassificationResult{PredictedClass: "can"}))

	var line struct {
		Ref    string `json:"ref"`
		Result struct {
			PredictedClass string `json:"predicted_class"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "can.jpg", line.Ref)
	assert.Equal(t, "can", line.Result.PredictedClass)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
