// Package tui предоставляет reusable UI компоненты и стили.
//
// components.go содержит общие стили для карточки результата,
// превью файла и статус-бара.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

// ===== SHARED STYLES =====

// SystemStyle возвращает стиль для подсказок и заметок.
func (c ColorScheme) SystemStyle(str string) string {
	return lipgloss.NewStyle().
		Foreground(c.SystemMessage).
		Render(str)
}

// ErrorStyle возвращает стиль для ошибок.
func (c ColorScheme) ErrorStyle(str string) string {
	return lipgloss.NewStyle().
		Foreground(c.ErrorMessage).
		Bold(true).
		Render(str)
}

// TitleStyle возвращает стиль заголовка карточки.
func (c ColorScheme) TitleStyle(str string) string {
	return lipgloss.NewStyle().
		Foreground(c.Title).
		Bold(true).
		Render(str)
}

// ConfidenceColor возвращает цвет уровня уверенности.
func (c ColorScheme) ConfidenceColor(level gomi.ConfidenceLevel) lipgloss.Color {
	switch level {
	case gomi.ConfidenceHigh:
		return c.ConfidenceHigh
	case gomi.ConfidenceMedium:
		return c.ConfidenceMedium
	default:
		return c.ConfidenceLow
	}
}

// ConfidenceBadge рендерит "92.0% HIGH" цветом уровня.
func (c ColorScheme) ConfidenceBadge(percentage string, level gomi.ConfidenceLevel) string {
	return lipgloss.NewStyle().
		Foreground(c.ConfidenceColor(level)).
		Bold(true).
		Render(percentage + " " + strings.ToUpper(string(level)))
}

// DividerStyle возвращает горизонтальную разделительную линию.
func (c ColorScheme) DividerStyle(width int) string {
	if width < 1 {
		width = 1
	}
	line := strings.Repeat("─", width)
	return lipgloss.NewStyle().
		Foreground(c.Border).
		Render(line)
}

// ===== COMPONENT BUILDERS =====

// Wrap переносит текст по словам под ширину области.
//
// width <= 0 возвращает текст без изменений.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// Section рендерит заголовок секции и строки под ним с отступом.
//
// Пустые строки пропускаются; если строк нет, секция не выводится.
func (c ColorScheme) Section(title string, lines []string, width int) string {
	var body []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		body = append(body, "  "+Wrap(line, width-2))
	}
	if len(body) == 0 {
		return ""
	}
	return c.SystemStyle(title) + "\n" + strings.Join(body, "\n")
}

// HealthIndicator — состояние сервиса для статус-бара.
type HealthIndicator struct {
	Known   bool   // Проверка уже выполнялась
	Healthy bool   // status=healthy и модель загружена
	Label   string // "gomi-ai v1.0.0" или причина недоступности
}

// RenderStatusBar рендерит статус-бар.
//
// Parameters:
//   - title: Заголовок приложения
//   - phase: Текущая фаза (idle, previewing, ...)
//   - lang: Язык ответа
//   - health: Состояние сервиса
//   - colors: Цветовая схема
//
// Возвращает отрендеренную строку статус-бара.
func RenderStatusBar(title, phase string, lang gomi.Language, health HealthIndicator, colors ColorScheme) string {
	base := lipgloss.NewStyle().
		Foreground(colors.StatusForeground).
		Background(colors.StatusBackground).
		Bold(true)

	content := " " + title + " | " + phase + " | Lang: " + string(lang) + " "

	healthText := " ● checking… "
	healthColor := colors.SystemMessage
	if health.Known {
		healthText = " ● " + health.Label + " "
		healthColor = colors.Unhealthy
		if health.Healthy {
			healthColor = colors.Healthy
		}
	}
	healthPart := lipgloss.NewStyle().
		Foreground(healthColor).
		Background(colors.StatusBackground).
		Render(healthText)

	return base.Render(content) + healthPart
}
