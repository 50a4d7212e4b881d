// Package ui реализует Bubble Tea TUI поверх оркестратора загрузки.
//
// Содержит структуру UI и функцию инициализации. Сетевые операции
// (загрузка файла, отправка, health) выполняются в tea.Cmd, фаза и
// исход читаются из orchestrator и state.Store.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/gomi-ai/internal/orchestrator"
	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/tui"
	"github.com/ilkoid/gomi-ai/pkg/tui/primitives"
	"github.com/ilkoid/gomi-ai/pkg/upload"
)

// HealthChecker — источник состояния сервиса для статус-бара.
type HealthChecker interface {
	Health(ctx context.Context) (*gomi.HealthStatus, error)
}

// Config конфигурация для создания MainModel.
type Config struct {
	// Orchestrator — конечный автомат загрузки (обязательный)
	Orchestrator *orchestrator.Orchestrator

	// Source открывает ссылку из поля ввода (по умолчанию upload.LocalSource)
	Source upload.Source

	// Health — проверка сервиса (опционально)
	Health HealthChecker

	// Events — подписка на события пайплайна (опционально)
	Events events.Subscriber

	Colors     tui.ColorScheme
	HealthPoll time.Duration // 0 = проверка только при старте
	Title      string
	Debug      bool
}

// MainModel — корневая модель TUI.
type MainModel struct {
	ctx context.Context

	orch       *orchestrator.Orchestrator
	source     upload.Source
	checker    HealthChecker
	events     events.Subscriber
	colors     tui.ColorScheme
	healthPoll time.Duration
	title      string

	pane   *primitives.ViewportManager
	status *primitives.StatusBarManager
	input  textinput.Model
	help   help.Model
	keys   tui.KeyMap

	ready   bool
	opening bool
	health  tui.HealthIndicator
	notes   []string // Заметки текущего цикла (сжатие, ошибки открытия)
}

// fileLoadedMsg — результат чтения файла из Source.
type fileLoadedMsg struct {
	ref  string
	file *upload.SelectedFile
	err  error
}

// submitDoneMsg — завершение Orchestrator.Submit.
type submitDoneMsg struct {
	result *gomi.ClassificationResult
	err    error
}

// healthMsg — результат health запроса.
type healthMsg struct {
	status *gomi.HealthStatus
	err    error
}

// healthTickMsg — время следующего опроса health.
type healthTickMsg struct{}

// NewModel создаёт MainModel.
//
// Rule 11: ctx используется всеми командами модели.
func NewModel(ctx context.Context, cfg Config) (*MainModel, error) {
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("cfg.Orchestrator is required")
	}
	if cfg.Source == nil {
		cfg.Source = upload.LocalSource{}
	}
	if cfg.Colors == (tui.ColorScheme{}) {
		cfg.Colors = tui.DefaultColorScheme()
	}
	if cfg.Title == "" {
		cfg.Title = "gomi"
	}

	ti := textinput.New()
	ti.Placeholder = "~/photos/can.jpg or s3://bucket-key.png"
	ti.Prompt = "┃ "
	ti.CharLimit = 1024
	ti.Focus()

	statusCfg := primitives.DefaultStatusBarConfig()
	statusCfg.SpinnerColor = cfg.Colors.Title
	statusCfg.IdleColor = cfg.Colors.SystemMessage
	statusCfg.BackgroundColor = cfg.Colors.StatusBackground
	status := primitives.NewStatusBarManager(statusCfg)
	status.SetDebugMode(cfg.Debug)

	m := &MainModel{
		ctx:        ctx,
		orch:       cfg.Orchestrator,
		source:     cfg.Source,
		checker:    cfg.Health,
		events:     cfg.Events,
		colors:     cfg.Colors,
		healthPoll: cfg.HealthPoll,
		title:      cfg.Title,
		pane:       primitives.NewViewportManager(primitives.ViewportConfig{MinWidth: 20}),
		status:     status,
		input:      ti,
		help:       help.New(),
		keys:       tui.DefaultKeyMap(),
	}
	m.refresh()
	return m, nil
}

// Init реализует tea.Model интерфейс.
//
// Возвращает команды для:
//   - мигания курсора в поле ввода
//   - чтения событий пайплайна
//   - первой проверки сервиса
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tui.ReceiveEventCmd(m.events, tui.ToEventMsg),
		m.checkHealthCmd(),
	)
}

// Run запускает TUI и блокируется до выхода.
//
// Правило 11: отмена ctx завершает программу.
func Run(ctx context.Context, cfg Config) error {
	model, err := NewModel(ctx, cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
