package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/gomi-ai/internal/orchestrator"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/state"
	"github.com/ilkoid/gomi-ai/pkg/tui"
	"github.com/ilkoid/gomi-ai/pkg/upload"
)

func sampleResult() *gomi.ClassificationResult {
	return &gomi.ClassificationResult{
		PredictedClass:       "can",
		Confidence:           0.92,
		ConfidencePercentage: "92.0%",
		ConfidenceLevel:      gomi.ConfidenceHigh,
		JapaneseName:         "缶",
		Hiragana:             "かん",
		EnglishName:          "Cans",
		DescriptionJA:        "飲料の缶",
		DescriptionEN:        "Beverage cans",
		CollectionDayJA:      "毎週水曜日",
		CollectionDayEN:      "Every Wednesday",
		CollectionFrequency:  "weekly",
		PreparationSteps:     []gomi.PreparationStep{{Japanese: "中をすすぐ", English: "Rinse inside"}},
		NotesJA:              []string{"スプレー缶は別"},
		NotesEN:              []string{"Spray cans go separately"},
		Icon:                 "🥫",
		AllProbabilities:     map[string]float64{"can": 0.92, "pet": 0.05, "glass": 0.03},
		ProcessingTimeMs:     120,
	}
}

func joined(blocks []string) string {
	return strings.Join(blocks, "\n")
}

func pngFile(t *testing.T, name string, w, h int) *upload.SelectedFile {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &upload.SelectedFile{Name: name, MIMEType: upload.MIMEPNG, Data: buf.Bytes()}
}

func TestRenderResult_Japanese(t *testing.T) {
	out := joined(renderResult(sampleResult(), gomi.LangJapanese, tui.DefaultColorScheme(), 80))

	for _, want := range []string{
		"🥫 缶 (かん)",
		"92.0% HIGH",
		"説明", "飲料の缶",
		"収集日", "毎週水曜日 (weekly)",
		"準備方法", "1. 中をすすぐ",
		"注意事項", "• スプレー缶は別",
		"pet 5.0% · glass 3.0%",
		"Processed in 120ms",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Cans")
	assert.NotContains(t, out, "確認してください", "confident result needs no confirmation")
}

func TestRenderResult_English(t *testing.T) {
	r := sampleResult()
	r.NeedsConfirmation = true
	out := joined(renderResult(r, gomi.LangEnglish, tui.DefaultColorScheme(), 80))

	assert.Contains(t, out, "🥫 Cans")
	assert.NotContains(t, out, "かん")
	assert.Contains(t, out, "Collection Schedule")
	assert.Contains(t, out, "1. Rinse inside")
	assert.Contains(t, out, "Low confidence. Please verify the classification.")
}

func TestRenderResult_FallsBackToPredictedClass(t *testing.T) {
	r := &gomi.ClassificationResult{PredictedClass: "battery", ConfidencePercentage: "40.0%", ConfidenceLevel: gomi.ConfidenceLow}
	out := joined(renderResult(r, gomi.LangEnglish, tui.DefaultColorScheme(), 80))

	assert.Contains(t, out, "battery")
	assert.Contains(t, out, "40.0% LOW")
	assert.NotContains(t, out, "Description", "empty sections are skipped")
	assert.NotContains(t, out, "Processed in")
}

func TestRenderError(t *testing.T) {
	colors := tui.DefaultColorScheme()

	out := joined(renderError("can.jpg", gomi.NewError(gomi.KindTimeout, nil), gomi.LangEnglish, colors))
	assert.Contains(t, out, "can.jpg")
	assert.Contains(t, out, gomi.KindTimeout.HumanMessage(gomi.LangEnglish))
	assert.Contains(t, out, "Ctrl+R")

	out = joined(renderError("", gomi.NewError(gomi.KindUnreachable, nil), gomi.LangJapanese, colors))
	assert.Contains(t, out, gomi.KindUnreachable.HumanMessage(gomi.LangJapanese))

	serverErr := &gomi.OperationError{Kind: gomi.KindServerReported, Message: "Model not loaded", Detail: "warming up"}
	out = joined(renderError("", serverErr, gomi.LangJapanese, colors))
	assert.Contains(t, out, "Model not loaded", "server text is shown verbatim")
	assert.Contains(t, out, "warming up")
}

func TestCards_ForCommandLine(t *testing.T) {
	colors := tui.DefaultColorScheme()

	card := ResultCard(sampleResult(), gomi.LangBoth, colors, 80)
	assert.Contains(t, card, "缶 / Cans")
	assert.Contains(t, card, "92.0% HIGH")

	errCard := ErrorCard("can.jpg", gomi.NewError(gomi.KindTimeout, nil), gomi.LangEnglish, colors)
	assert.Contains(t, errCard, "can.jpg")
	assert.Contains(t, errCard, gomi.KindTimeout.HumanMessage(gomi.LangEnglish))
	assert.NotContains(t, errCard, "Ctrl+R", "key hints belong to the TUI")
}

func TestRenderPreview(t *testing.T) {
	colors := tui.DefaultColorScheme()
	file := pngFile(t, "bottle.png", 4, 3)

	out := joined(renderPreview(file, nil, false, gomi.LangEnglish, colors))
	assert.Contains(t, out, "bottle.png")
	assert.Contains(t, out, "image/png")
	assert.Contains(t, out, "4x3")
	assert.Contains(t, out, "Enter: classify")

	out = joined(renderPreview(file, nil, true, gomi.LangEnglish, colors))
	assert.Contains(t, out, "Classifying")

	rejection := gomi.TooLargeError(12*1024*1024, upload.MaxFileSize)
	out = joined(renderPreview(file, rejection, false, gomi.LangEnglish, colors))
	assert.Contains(t, out, "Your file is 12.00MB.")
	assert.NotContains(t, out, "Enter: classify")
}

func TestHealthIndicator(t *testing.T) {
	tests := []struct {
		name    string
		status  *gomi.HealthStatus
		err     error
		healthy bool
		label   string
	}{
		{"healthy", &gomi.HealthStatus{Status: "healthy", ModelLoaded: true, AppName: "gomi-ai", Version: "1.0.0"}, nil, true, "gomi-ai v1.0.0"},
		{"healthy without name", &gomi.HealthStatus{Status: "healthy", ModelLoaded: true}, nil, true, "online"},
		{"model not loaded", &gomi.HealthStatus{Status: "healthy"}, nil, false, "model not loaded"},
		{"degraded", &gomi.HealthStatus{Status: "degraded", ModelLoaded: true}, nil, false, "not ready"},
		{"unreachable", nil, gomi.NewError(gomi.KindUnreachable, nil), false, "offline (unreachable)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := healthIndicator(tt.status, tt.err)
			assert.True(t, got.Known)
			assert.Equal(t, tt.healthy, got.Healthy)
			assert.Equal(t, tt.label, got.Label)
		})
	}
}

// ===== MODEL FLOW =====

type stubClassifier struct {
	calls   int32
	results []*gomi.ClassificationResult
	errs    []error
}

func (s *stubClassifier) Classify(_ context.Context, _ *upload.SelectedFile, _ gomi.Language) (*gomi.ClassificationResult, error) {
	i := int(atomic.AddInt32(&s.calls, 1)) - 1
	var (
		r   *gomi.ClassificationResult
		err error
	)
	if i < len(s.results) {
		r = s.results[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return r, err
}

type stubSource struct {
	file *upload.SelectedFile
	err  error
}

func (s stubSource) Open(context.Context, string) (*upload.SelectedFile, error) {
	return s.file, s.err
}

func newTestModel(t *testing.T, c *stubClassifier, src upload.Source) *MainModel {
	t.Helper()
	orch, err := orchestrator.New(orchestrator.Config{Classifier: c, Store: state.NewStore(gomi.LangJapanese)})
	require.NoError(t, err)

	m, err := NewModel(context.Background(), Config{Orchestrator: orch, Source: src})
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	return m
}

// runCmd выполняет команду и разворачивает tea.BatchMsg.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver отправляет в модель все сообщения команды, кроме тиков спиннера.
func deliver(m *MainModel, cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		switch msg.(type) {
		case fileLoadedMsg, submitDoneMsg, healthMsg:
			m.Update(msg)
		}
	}
}

func press(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestModel_SelectSubmitSucceed(t *testing.T) {
	c := &stubClassifier{results: []*gomi.ClassificationResult{sampleResult()}}
	file := pngFile(t, "can.png", 8, 8)
	m := newTestModel(t, c, stubSource{file: file})

	assert.Contains(t, m.View(), txtWelcome.ja)

	// Ввод пути и Enter открывают файл
	for _, r := range "can.png" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "can.png", m.input.Value())

	_, cmd := m.Update(press(tea.KeyEnter))
	deliver(m, cmd)

	assert.Equal(t, orchestrator.PhasePreviewing, m.orch.Phase())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "can.png")
	assert.Contains(t, m.View(), txtClassifyHint.ja)

	// Пустой Enter отправляет превью
	_, cmd = m.Update(press(tea.KeyEnter))
	deliver(m, cmd)

	assert.Equal(t, orchestrator.PhaseSucceeded, m.orch.Phase())
	assert.False(t, m.status.IsProcessing())
	view := m.View()
	assert.Contains(t, view, "缶 (かん)")
	assert.Contains(t, view, "92.0% HIGH")

	// Переключение языка перерисовывает карточку
	m.Update(press(tea.KeyCtrlL))
	assert.Equal(t, gomi.LangEnglish, m.orch.Store().Language())
	assert.Contains(t, m.View(), "Cans")

	// Новое фото
	m.Update(press(tea.KeyCtrlN))
	assert.Equal(t, orchestrator.PhaseIdle, m.orch.Phase())
	assert.Contains(t, m.View(), txtWelcome.en)
	assert.Equal(t, int32(1), atomic.LoadInt32(&c.calls))
}

func TestModel_FailureThenRetry(t *testing.T) {
	c := &stubClassifier{
		results: []*gomi.ClassificationResult{nil, sampleResult()},
		errs:    []error{gomi.NewError(gomi.KindGatewayTimeout, nil)},
	}
	m := newTestModel(t, c, nil)
	m.Update(fileLoadedMsg{ref: "can.png", file: pngFile(t, "can.png", 4, 4)})

	_, cmd := m.Update(press(tea.KeyEnter))
	deliver(m, cmd)

	require.Equal(t, orchestrator.PhaseFailed, m.orch.Phase())
	assert.Contains(t, m.View(), gomi.KindGatewayTimeout.HumanMessage(gomi.LangJapanese))

	_, cmd = m.Update(press(tea.KeyCtrlR))
	require.NotNil(t, cmd)
	deliver(m, cmd)

	assert.Equal(t, orchestrator.PhaseSucceeded, m.orch.Phase())
	assert.Equal(t, int32(2), atomic.LoadInt32(&c.calls))

	_, cmd = m.Update(press(tea.KeyCtrlR))
	assert.Nil(t, cmd, "retry is only offered after a failure")
}

func TestModel_LocalRejectionStaysInPreview(t *testing.T) {
	c := &stubClassifier{}
	m := newTestModel(t, c, nil)
	empty := &upload.SelectedFile{Name: "empty.jpg", MIMEType: upload.MIMEJPEG}
	m.Update(fileLoadedMsg{ref: "empty.jpg", file: empty})

	_, cmd := m.Update(press(tea.KeyEnter))
	deliver(m, cmd)

	assert.Equal(t, orchestrator.PhasePreviewing, m.orch.Phase())
	assert.Zero(t, atomic.LoadInt32(&c.calls))
	assert.Contains(t, m.View(), "empty.jpg")
	assert.Contains(t, m.View(), "✗")
}

func TestModel_OpenFailureShowsError(t *testing.T) {
	m := newTestModel(t, &stubClassifier{}, stubSource{err: errors.New("no such file")})

	for _, r := range "missing.jpg" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := m.Update(press(tea.KeyEnter))
	deliver(m, cmd)

	assert.Equal(t, orchestrator.PhaseIdle, m.orch.Phase())
	assert.False(t, m.opening)
	assert.Contains(t, m.View(), "Cannot open missing.jpg: no such file")
}

func TestModel_EscClearsInputThenDiscards(t *testing.T) {
	m := newTestModel(t, &stubClassifier{}, nil)
	m.Update(fileLoadedMsg{ref: "a.png", file: pngFile(t, "a.png", 2, 2)})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	m.Update(press(tea.KeyEsc))
	assert.Empty(t, m.input.Value())
	assert.Equal(t, orchestrator.PhasePreviewing, m.orch.Phase())

	m.Update(press(tea.KeyEsc))
	assert.Equal(t, orchestrator.PhaseIdle, m.orch.Phase())
}

func TestModel_HealthMessageUpdatesStatusBar(t *testing.T) {
	m := newTestModel(t, &stubClassifier{}, nil)
	assert.Contains(t, m.View(), "checking")

	_, cmd := m.Update(healthMsg{status: &gomi.HealthStatus{Status: "healthy", ModelLoaded: true, AppName: "gomi-ai", Version: "1.0.0"}})
	assert.Nil(t, cmd, "no polling configured")
	assert.Contains(t, m.View(), "gomi-ai v1.0.0")
}

func TestNewModel_RequiresOrchestrator(t *testing.T) {
	_, err := NewModel(context.Background(), Config{})
	assert.Error(t, err)
}

func TestModel_LateSubmitDoneKeepsCurrentSpinner(t *testing.T) {
	m := newTestModel(t, &stubClassifier{}, nil)
	m.status.Start("Classifying next.png")

	m.Update(submitDoneMsg{err: &state.StaleCycleError{}})
	assert.True(t, m.status.IsProcessing(), "response of a reset cycle must not stop the new one")

	m.Update(submitDoneMsg{err: orchestrator.ErrNotPreviewing})
	assert.True(t, m.status.IsProcessing(), "duplicate Enter must not stop the running submission")

	m.Update(submitDoneMsg{result: sampleResult()})
	assert.False(t, m.status.IsProcessing())
}
