// Package primitives содержит thread-safe строительные блоки TUI:
// область прокрутки с переносом строк и статус-бар со спиннером.
package primitives

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// ViewportManager управляет областью прокрутки.
//
// Хранит исходные блоки без переноса и переносит их заново при каждом
// изменении ширины, поэтому карточка результата не ломается при resize.
type ViewportManager struct {
	viewport viewport.Model
	blocks   []string // Исходные блоки без word-wrap
	minWidth int
	mu       sync.RWMutex
}

// ViewportConfig holds configuration for ViewportManager
type ViewportConfig struct {
	MinWidth int
}

// NewViewportManager создаёт пустую область.
func NewViewportManager(cfg ViewportConfig) *ViewportManager {
	if cfg.MinWidth <= 0 {
		cfg.MinWidth = 20
	}
	return &ViewportManager{
		viewport: viewport.New(cfg.MinWidth, 1),
		minWidth: cfg.MinWidth,
	}
}

// HandleResize пересчитывает размеры области по размеру окна.
//
// Высота не опускается ниже 1, позиция "внизу" сохраняется.
func (vm *ViewportManager) HandleResize(msg tea.WindowSizeMsg, headerHeight, footerHeight int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vpHeight := msg.Height - headerHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpWidth := msg.Width
	if vpWidth < vm.minWidth {
		vpWidth = vm.minWidth
	}

	// wasAtBottom считаем ДО изменения высоты
	wasAtBottom := vm.atBottom()

	vm.viewport.Height = vpHeight
	vm.viewport.Width = vpWidth
	vm.viewport.SetContent(vm.render())

	if wasAtBottom {
		vm.viewport.GotoBottom()
		return
	}
	maxOffset := vm.viewport.TotalLineCount() - vm.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if vm.viewport.YOffset > maxOffset {
		vm.viewport.SetYOffset(maxOffset)
	}
}

// Replace заменяет содержимое и прокручивает в начало.
//
// Используется для карточек (превью, результат, ошибка).
func (vm *ViewportManager) Replace(blocks ...string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.blocks = append([]string(nil), blocks...)
	vm.viewport.SetContent(vm.render())
	vm.viewport.GotoTop()
}

// Append добавляет блок в конец.
//
// Автоскролл вниз только если пользователь был внизу.
func (vm *ViewportManager) Append(block string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	wasAtBottom := vm.atBottom()
	vm.blocks = append(vm.blocks, block)
	vm.viewport.SetContent(vm.render())
	if wasAtBottom {
		vm.viewport.GotoBottom()
	}
}

// Clear удаляет всё содержимое.
func (vm *ViewportManager) Clear() {
	vm.Replace()
}

// Blocks возвращает копию исходных блоков.
func (vm *ViewportManager) Blocks() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return append([]string(nil), vm.blocks...)
}

// View рендерит видимую часть.
func (vm *ViewportManager) View() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.View()
}

// ScrollUp scrolls the viewport up by n lines
func (vm *ViewportManager) ScrollUp(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.viewport.LineUp(n)
}

// ScrollDown scrolls the viewport down by n lines
func (vm *ViewportManager) ScrollDown(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.viewport.LineDown(n)
}

// PageSize возвращает высоту области.
func (vm *ViewportManager) PageSize() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.Height
}

// GetDimensions returns the current viewport dimensions
func (vm *ViewportManager) GetDimensions() (width, height int) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.Width, vm.viewport.Height
}

// YOffset возвращает текущую позицию прокрутки.
func (vm *ViewportManager) YOffset() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.YOffset
}

// TotalLines возвращает число строк после переноса.
func (vm *ViewportManager) TotalLines() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.TotalLineCount()
}

// atBottom вызывается под vm.mu.
func (vm *ViewportManager) atBottom() bool {
	return vm.viewport.YOffset+vm.viewport.Height >= vm.viewport.TotalLineCount()
}

// render переносит блоки под текущую ширину. Вызывается под vm.mu.
//
// wordwrap переносит по словам, wrap режет слова длиннее строки
// (пути к файлам, ключи S3).
func (vm *ViewportManager) render() string {
	width := vm.viewport.Width
	var lines []string
	for _, block := range vm.blocks {
		wrapped := wrap.String(wordwrap.String(block, width), width)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	return strings.Join(lines, "\n")
}
