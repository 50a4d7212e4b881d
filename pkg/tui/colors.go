// Package tui предоставляет color schemes и стили для TUI компонентов.
//
// ColorSchemes позволяют пользователям кастомизировать внешний вид TUI
// через app.color_scheme в конфиге без изменения кода.
package tui

import "github.com/charmbracelet/lipgloss"

// ColorScheme определяет цвета для различных элементов TUI.
//
// Каждое поле - это lipgloss.Color (может быть hex, ANSI, или named color).
type ColorScheme struct {
	// Status Bar
	StatusBackground lipgloss.Color // Фон статус-бара
	StatusForeground lipgloss.Color // Текст в статус-баре
	Healthy          lipgloss.Color // Сервис готов
	Unhealthy        lipgloss.Color // Сервис недоступен или модель не загружена

	// Result card
	Title            lipgloss.Color // Название категории
	ConfidenceHigh   lipgloss.Color
	ConfidenceMedium lipgloss.Color
	ConfidenceLow    lipgloss.Color

	// Messages
	SystemMessage lipgloss.Color // Подсказки и заметки (серый)
	ErrorMessage  lipgloss.Color // Ошибки (красный)

	// Input Area
	InputPrompt lipgloss.Color // Приглашение ввода

	// UI Elements
	Border lipgloss.Color // Границы и разделители
}

// ColorSchemes предоставляет предустановленные цветовые схемы.
//
// Пользователи могут использовать их напрямую или создать свои на основе.
var ColorSchemes = map[string]ColorScheme{
	"default": {
		StatusBackground: lipgloss.Color("235"),
		StatusForeground: lipgloss.Color("252"),
		Healthy:          lipgloss.Color("42"),
		Unhealthy:        lipgloss.Color("196"),
		Title:            lipgloss.Color("86"),
		ConfidenceHigh:   lipgloss.Color("42"),
		ConfidenceMedium: lipgloss.Color("214"),
		ConfidenceLow:    lipgloss.Color("196"),
		SystemMessage:    lipgloss.Color("242"),
		ErrorMessage:     lipgloss.Color("196"),
		InputPrompt:      lipgloss.Color("252"),
		Border:           lipgloss.Color("240"),
	},
	"dark": {
		StatusBackground: lipgloss.Color("0"),
		StatusForeground: lipgloss.Color("15"),
		Healthy:          lipgloss.Color("10"),
		Unhealthy:        lipgloss.Color("9"),
		Title:            lipgloss.Color("14"),
		ConfidenceHigh:   lipgloss.Color("10"),
		ConfidenceMedium: lipgloss.Color("11"),
		ConfidenceLow:    lipgloss.Color("9"),
		SystemMessage:    lipgloss.Color("8"),
		ErrorMessage:     lipgloss.Color("9"),
		InputPrompt:      lipgloss.Color("15"),
		Border:           lipgloss.Color("4"),
	},
	"light": {
		StatusBackground: lipgloss.Color("255"),
		StatusForeground: lipgloss.Color("0"),
		Healthy:          lipgloss.Color("28"),
		Unhealthy:        lipgloss.Color("1"),
		Title:            lipgloss.Color("31"),
		ConfidenceHigh:   lipgloss.Color("28"),
		ConfidenceMedium: lipgloss.Color("130"),
		ConfidenceLow:    lipgloss.Color("1"),
		SystemMessage:    lipgloss.Color("8"),
		ErrorMessage:     lipgloss.Color("1"),
		InputPrompt:      lipgloss.Color("0"),
		Border:           lipgloss.Color("8"),
	},
	"dracula": {
		StatusBackground: lipgloss.Color("#282a36"),
		StatusForeground: lipgloss.Color("#f8f8f2"),
		Healthy:          lipgloss.Color("#50fa7b"),
		Unhealthy:        lipgloss.Color("#ff5555"),
		Title:            lipgloss.Color("#8be9fd"),
		ConfidenceHigh:   lipgloss.Color("#50fa7b"),
		ConfidenceMedium: lipgloss.Color("#ffb86c"),
		ConfidenceLow:    lipgloss.Color("#ff5555"),
		SystemMessage:    lipgloss.Color("#6272a4"),
		ErrorMessage:     lipgloss.Color("#ff5555"),
		InputPrompt:      lipgloss.Color("#f8f8f2"),
		Border:           lipgloss.Color("#44475a"),
	},
}

// DefaultColorScheme возвращает схему по умолчанию.
//
// Используется как fallback когда схема не найдена.
func DefaultColorScheme() ColorScheme {
	return ColorSchemes["default"]
}

// GetColorScheme возвращает цветовую схему по имени.
//
// Если схема не найдена, возвращает default.
func GetColorScheme(name string) ColorScheme {
	if scheme, ok := ColorSchemes[name]; ok {
		return scheme
	}
	return DefaultColorScheme()
}
