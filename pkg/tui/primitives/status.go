package primitives

import (
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBarManager — индикатор активности: спиннер с подписью во время
// отправки и "✓ Ready" в покое.
type StatusBarManager struct {
	spinner      spinner.Model
	isProcessing bool
	label        string // Подпись к спиннеру ("Classifying can.jpg")
	debugMode    bool
	mu           sync.RWMutex

	cfg StatusBarConfig
}

// StatusBarConfig holds color configuration for the status bar
type StatusBarConfig struct {
	SpinnerColor    lipgloss.Color // Во время обработки
	IdleColor       lipgloss.Color // В покое
	BackgroundColor lipgloss.Color
	DebugColor      lipgloss.Color
	DebugText       lipgloss.Color
}

// DefaultStatusBarConfig returns the default color scheme
func DefaultStatusBarConfig() StatusBarConfig {
	return StatusBarConfig{
		SpinnerColor:    lipgloss.Color("86"),
		IdleColor:       lipgloss.Color("242"),
		BackgroundColor: lipgloss.Color("235"),
		DebugColor:      lipgloss.Color("196"),
		DebugText:       lipgloss.Color("15"),
	}
}

// NewStatusBarManager creates a new StatusBarManager with the given configuration
func NewStatusBarManager(cfg StatusBarConfig) *StatusBarManager {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(cfg.SpinnerColor)

	return &StatusBarManager{
		spinner: s,
		cfg:     cfg,
	}
}

// Render returns the status bar as a styled string
func (sm *StatusBarManager) Render() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	text := "✓ Ready"
	color := sm.cfg.IdleColor
	if sm.isProcessing {
		text = sm.spinner.View()
		if sm.label != "" {
			text += " " + sm.label
		}
		color = sm.cfg.SpinnerColor
	}

	out := lipgloss.NewStyle().
		Background(sm.cfg.BackgroundColor).
		Foreground(color).
		Padding(0, 1).
		Render(text)

	if sm.debugMode {
		out += lipgloss.NewStyle().
			Background(sm.cfg.DebugColor).
			Foreground(sm.cfg.DebugText).
			Bold(true).
			Padding(0, 1).
			Render("DEBUG")
	}
	return out
}

// Start включает спиннер с подписью и возвращает команду первого тика.
func (sm *StatusBarManager) Start(label string) tea.Cmd {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isProcessing = true
	sm.label = label
	return sm.spinner.Tick
}

// Stop выключает спиннер.
func (sm *StatusBarManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isProcessing = false
	sm.label = ""
}

// IsProcessing returns the current processing state
func (sm *StatusBarManager) IsProcessing() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isProcessing
}

// SetDebugMode toggles DEBUG indicator
func (sm *StatusBarManager) SetDebugMode(enabled bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.debugMode = enabled
}

// Update продвигает анимацию спиннера.
//
// В покое тики не продолжаются, чтобы не крутить пустой цикл.
func (sm *StatusBarManager) Update(msg spinner.TickMsg) tea.Cmd {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.isProcessing {
		return nil
	}
	var cmd tea.Cmd
	sm.spinner, cmd = sm.spinner.Update(msg)
	return cmd
}
