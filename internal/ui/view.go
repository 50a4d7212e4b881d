// Рендер
package ui

import (
	"fmt"
	"strings"

	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/imaging"
	"github.com/ilkoid/gomi-ai/pkg/tui"
	"github.com/ilkoid/gomi-ai/pkg/upload"
)

// View реализует tea.Model: статус-бар, карточка, разделитель, ввод, спиннер, help.
func (m *MainModel) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	header := tui.RenderStatusBar(m.title, string(m.orch.Phase()), m.orch.Store().Language(), m.health, m.colors)
	width, _ := m.pane.GetDimensions()

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.pane.View())
	b.WriteString("\n")
	b.WriteString(m.colors.DividerStyle(width))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.status.Render())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderWelcome — экран Idle.
func renderWelcome(lang gomi.Language, colors tui.ColorScheme) []string {
	return []string{
		colors.TitleStyle("♻ gomi"),
		colors.SystemStyle(txtWelcome.in(lang)),
	}
}

// renderPreview — карточка выбранного файла.
//
// Отказ валидации показывается прямо под превью.
func renderPreview(file *upload.SelectedFile, rejection *gomi.OperationError, submitting bool, lang gomi.Language, colors tui.ColorScheme) []string {
	info := fmt.Sprintf("%s · %.2fMB", file.MIMEType, file.SizeMB())
	if w, h, _, err := imaging.Dimensions(file.Data); err == nil {
		info += fmt.Sprintf(" · %dx%d", w, h)
	}

	blocks := []string{
		colors.TitleStyle("📷 " + file.Name),
		colors.SystemStyle(info),
	}
	switch {
	case rejection != nil:
		blocks = append(blocks, colors.ErrorStyle("✗ "+rejection.Localized(lang)))
	case submitting:
		blocks = append(blocks, colors.SystemStyle(txtClassifying.in(lang)))
	default:
		blocks = append(blocks, colors.SystemStyle(txtClassifyHint.in(lang)))
	}
	return blocks
}

// renderResult — карточка результата классификации.
func renderResult(r *gomi.ClassificationResult, lang gomi.Language, colors tui.ColorScheme, width int) []string {
	title := r.DisplayName(lang)
	if title == "" {
		title = r.PredictedClass
	}
	if r.Icon != "" {
		title = r.Icon + " " + title
	}
	if lang != gomi.LangEnglish && r.Hiragana != "" {
		title += " (" + r.Hiragana + ")"
	}

	blocks := []string{
		colors.TitleStyle(title),
		txtConfidence.in(lang) + ": " + colors.ConfidenceBadge(r.ConfidencePercentage, r.ConfidenceLevel),
	}
	if r.NeedsConfirmation {
		blocks = append(blocks, colors.ErrorStyle("⚠ "+txtConfirm.in(lang)))
	}

	day := r.CollectionDay(lang)
	if day != "" && r.CollectionFrequency != "" {
		day += " (" + r.CollectionFrequency + ")"
	}

	var steps []string
	for i, s := range r.Steps(lang) {
		steps = append(steps, fmt.Sprintf("%d. %s", i+1, s))
	}

	var notes []string
	for _, n := range r.Notes(lang) {
		notes = append(notes, "• "+n)
	}

	var others []string
	for _, p := range r.TopProbabilities(4) {
		if p.Category == r.PredictedClass {
			continue
		}
		others = append(others, fmt.Sprintf("%s %s", p.Category, gomi.FormatPercentage(p.Value)))
	}
	if len(others) > 3 {
		others = others[:3]
	}

	for _, section := range []string{
		colors.Section(txtDescription.in(lang), []string{r.Description(lang)}, width),
		colors.Section(txtCollection.in(lang), []string{day}, width),
		colors.Section(txtSteps.in(lang), steps, width),
		colors.Section(txtExamples.in(lang), []string{strings.Join(examples(r, lang), ", ")}, width),
		colors.Section(txtNotes.in(lang), notes, width),
		colors.Section(txtOthers.in(lang), []string{strings.Join(others, " · ")}, width),
	} {
		if section != "" {
			blocks = append(blocks, "", section)
		}
	}

	if r.ProcessingTimeMs > 0 {
		blocks = append(blocks, "", colors.SystemStyle(fmt.Sprintf("Processed in %.0fms", r.ProcessingTimeMs)))
	}
	return blocks
}

// renderError — карточка ошибки отправки.
func renderError(fileName string, err *gomi.OperationError, lang gomi.Language, colors tui.ColorScheme) []string {
	blocks := []string{}
	if fileName != "" {
		blocks = append(blocks, colors.SystemStyle("📷 "+fileName))
	}
	blocks = append(blocks, colors.ErrorStyle("✗ "+err.Localized(lang)))
	if err.Detail != "" && err.Detail != err.Message {
		blocks = append(blocks, colors.SystemStyle(err.Detail))
	}
	blocks = append(blocks, "", colors.SystemStyle(txtRetryHint.in(lang)))
	return blocks
}

func examples(r *gomi.ClassificationResult, lang gomi.Language) []string {
	switch lang {
	case gomi.LangEnglish:
		return r.ExamplesEN
	case gomi.LangBoth:
		return append(append([]string{}, r.ExamplesJA...), r.ExamplesEN...)
	default:
		return r.ExamplesJA
	}
}

// ResultCard рендерит карточку результата для вывода вне TUI (команда classify).
func ResultCard(r *gomi.ClassificationResult, lang gomi.Language, colors tui.ColorScheme, width int) string {
	return strings.Join(renderResult(r, lang, colors, width), "\n")
}

// ErrorCard рендерит карточку ошибки для вывода вне TUI.
func ErrorCard(fileName string, err *gomi.OperationError, lang gomi.Language, colors tui.ColorScheme) string {
	blocks := renderError(fileName, err, lang, colors)
	// Подсказка про клавиши имеет смысл только в TUI
	return strings.Join(blocks[:len(blocks)-2], "\n")
}
