// Логика - Обрабатывает нажатия клавиш и результаты команд.

package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/gomi-ai/internal/orchestrator"
	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/state"
	"github.com/ilkoid/gomi-ai/pkg/tui"
	"github.com/ilkoid/gomi-ai/pkg/utils"
)

// headerHeight — статус-бар; footerHeight — разделитель, ввод, спиннер, help.
const (
	headerHeight = 1
	footerHeight = 4
)

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// 1. Изменение размера окна терминала
	case tea.WindowSizeMsg:
		extra := 0
		if m.help.ShowAll {
			extra = 2
		}
		m.pane.HandleResize(msg, headerHeight, footerHeight+extra)
		m.input.Width = msg.Width - 4
		m.help.Width = msg.Width
		m.ready = true
		m.refresh()
		return m, nil

	// 2. Клавиши
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		return m, m.status.Update(msg)

	// 3. Результаты команд (прилетают асинхронно)
	case fileLoadedMsg:
		return m, m.handleFileLoaded(msg)

	case submitDoneMsg:
		m.handleSubmitDone(msg)
		return m, nil

	case healthMsg:
		m.health = healthIndicator(msg.status, msg.err)
		if m.healthPoll > 0 {
			return m, tea.Tick(m.healthPoll, func(time.Time) tea.Msg { return healthTickMsg{} })
		}
		return m, nil

	case healthTickMsg:
		return m, m.checkHealthCmd()

	// 4. События пайплайна
	case tui.EventMsg:
		m.handleEvent(events.Event(msg))
		return m, tui.ReceiveEventCmd(m.events, tui.ToEventMsg)

	case tui.SubscriptionClosedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey обрабатывает нажатия клавиш.
//
// Все действия висят на Ctrl; остальные клавиши уходят в поле ввода.
func (m *MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.pane.ScrollUp(m.pane.PageSize())
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.pane.ScrollDown(m.pane.PageSize())
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		return m, m.confirm()

	case key.Matches(msg, m.keys.Discard):
		if m.input.Value() != "" {
			m.input.Reset()
			return m, nil
		}
		if err := m.orch.Discard(m.ctx); err == nil {
			m.notes = nil
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.orch.Reset(m.ctx)
		m.status.Stop()
		m.notes = nil
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		return m, m.retry()

	case key.Matches(msg, m.keys.CycleLanguage):
		m.orch.SetLanguage(m.orch.Store().Language().Next())
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.CheckHealth):
		m.health = tui.HealthIndicator{}
		return m, m.checkHealthCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// confirm: непустой ввод открывает файл, пустой отправляет превью.
func (m *MainModel) confirm() tea.Cmd {
	ref := strings.TrimSpace(m.input.Value())
	if ref == "" {
		if m.orch.Phase() != orchestrator.PhasePreviewing {
			return nil
		}
		return m.submit()
	}

	if m.opening || m.orch.Phase() == orchestrator.PhaseSubmitting {
		return nil
	}
	m.input.Reset()
	m.opening = true
	tick := m.status.Start("Opening " + ref)

	ctx, source := m.ctx, m.source
	return tea.Batch(tick, func() tea.Msg {
		file, err := source.Open(ctx, ref)
		return fileLoadedMsg{ref: ref, file: file, err: err}
	})
}

// submit запускает Orchestrator.Submit в отдельной горутине.
func (m *MainModel) submit() tea.Cmd {
	file := m.orch.File()
	if file == nil {
		return nil
	}
	tick := m.status.Start("Classifying " + file.Name)
	m.notes = nil
	m.refresh()

	ctx, orch := m.ctx, m.orch
	return tea.Batch(tick, func() tea.Msg {
		result, err := orch.Submit(ctx)
		return submitDoneMsg{result: result, err: err}
	})
}

// retry — повторная отправка того же файла после ошибки.
//
// Это новая отправка, инициированная пользователем: автоматических
// повторов нет.
func (m *MainModel) retry() tea.Cmd {
	if m.orch.Phase() != orchestrator.PhaseFailed {
		return nil
	}
	file := m.orch.File()
	if file == nil {
		return nil
	}
	if err := m.orch.Select(m.ctx, file); err != nil {
		return nil
	}
	utils.Info("Retry requested", "file", file.Name)
	return m.submit()
}

func (m *MainModel) handleFileLoaded(msg fileLoadedMsg) tea.Cmd {
	m.opening = false
	m.status.Stop()

	if msg.err != nil {
		utils.Warn("Cannot open file", "ref", msg.ref, "error", msg.err)
		m.refresh()
		m.pane.Append("")
		m.pane.Append(m.colors.ErrorStyle(fmt.Sprintf("✗ Cannot open %s: %v", msg.ref, msg.err)))
		return nil
	}

	if err := m.orch.Select(m.ctx, msg.file); err != nil {
		m.pane.Append(m.colors.ErrorStyle("✗ " + err.Error()))
		return nil
	}
	m.notes = nil
	m.refresh()
	return nil
}

func (m *MainModel) handleSubmitDone(msg submitDoneMsg) {
	switch {
	case errors.Is(msg.err, state.ErrStaleCycle):
		// Reset во время запроса: спиннер принадлежит новому циклу
		return
	case errors.Is(msg.err, orchestrator.ErrNotPreviewing):
		return
	}
	m.status.Stop()
	m.refresh()
}

// handleEvent обновляет экран по событиям пайплайна.
func (m *MainModel) handleEvent(ev events.Event) {
	switch data := ev.Data.(type) {
	case events.CompressionData:
		if data.Applied {
			m.notes = append(m.notes, fmt.Sprintf("Compressed %.2fMB → %.2fMB (%dx%d)",
				mb(data.OriginalSize), mb(data.OutputSize), data.Width, data.Height))
		} else if data.Reason != "" {
			m.notes = append(m.notes, "Sent original image: "+data.Reason)
		}
		m.refresh()
	case events.PhaseData:
		utils.Debug("Phase changed", "from", data.From, "to", data.To, "file", data.File)
		m.refresh()
	case events.StaleData:
		utils.Debug("Late response discarded", "cycle", data.Cycle)
	}
}

// refresh перерисовывает карточку по фазе оркестратора и исходу Store.
func (m *MainModel) refresh() {
	lang := m.orch.Store().Language()
	width, _ := m.pane.GetDimensions()
	snap := m.orch.Store().Snapshot()

	file := m.orch.File()

	var blocks []string
	switch phase := m.orch.Phase(); {
	case file != nil && phase == orchestrator.PhasePreviewing:
		blocks = renderPreview(file, m.orch.Rejection(), false, lang, m.colors)
	case file != nil && phase == orchestrator.PhaseSubmitting:
		blocks = renderPreview(file, nil, true, lang, m.colors)
	case phase == orchestrator.PhaseSucceeded:
		if r, ok := snap.Result(); ok {
			blocks = renderResult(r, lang, m.colors, width)
			blocks = append(blocks, "", m.colors.SystemStyle(txtNextHint.in(lang)))
		}
	case phase == orchestrator.PhaseFailed:
		if opErr, ok := snap.Err(); ok {
			name := ""
			if file != nil {
				name = file.Name
			}
			blocks = renderError(name, opErr, lang, m.colors)
		}
	}
	if len(blocks) == 0 {
		blocks = renderWelcome(lang, m.colors)
	}

	for _, note := range m.notes {
		blocks = append(blocks, m.colors.SystemStyle("· "+note))
	}
	m.pane.Replace(blocks...)
}

func (m *MainModel) checkHealthCmd() tea.Cmd {
	if m.checker == nil {
		return nil
	}
	ctx, checker := m.ctx, m.checker
	return func() tea.Msg {
		status, err := checker.Health(ctx)
		return healthMsg{status: status, err: err}
	}
}

// healthIndicator переводит ответ health в индикатор статус-бара.
func healthIndicator(status *gomi.HealthStatus, err error) tui.HealthIndicator {
	switch {
	case err != nil:
		return tui.HealthIndicator{Known: true, Label: "offline (" + gomi.KindOf(err).String() + ")"}
	case !status.IsHealthy():
		label := "not ready"
		if status != nil && !status.ModelLoaded {
			label = "model not loaded"
		}
		return tui.HealthIndicator{Known: true, Label: label}
	}

	label := "online"
	if status.AppName != "" {
		label = status.AppName
		if status.Version != "" {
			label += " v" + status.Version
		}
	}
	return tui.HealthIndicator{Known: true, Healthy: true, Label: label}
}

func mb(size int64) float64 {
	return float64(size) / 1024 / 1024
}

var _ tea.Model = (*MainModel)(nil)
