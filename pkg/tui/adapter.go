// Package tui предоставляет reusable helpers для подключения Bubble Tea TUI к пайплайну.
//
// Это НЕ готовый TUI (он остаётся в internal/ui/), а reusable адаптеры
// и конвертеры для удобной работы с событиями пайплайна.
//
// Port & Adapter паттерн:
//   - pkg/events.* — Port (интерфейсы)
//   - pkg/tui.* — Adapter helpers (переиспользуемые утилиты)
//   - internal/ui.* — Конкретная реализация TUI (app-specific)
//
// # Basic Usage
//
//	emitter := events.NewChanEmitter(64)
//	sub := emitter.Subscribe()
//
//	// Конвертируем события пайплайна в Bubble Tea сообщения
//	cmd := tui.ReceiveEventCmd(sub, func(event events.Event) tea.Msg {
//	    return tui.EventMsg(event)
//	})
//
// Rule 6: только reusable код, без app-specific логики.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/gomi-ai/pkg/events"
)

// EventMsg конвертирует events.Event в Bubble Tea сообщение.
type EventMsg events.Event

// SubscriptionClosedMsg приходит, когда эмиттер закрыт.
type SubscriptionClosedMsg struct{}

// ReceiveEventCmd возвращает Bubble Tea Cmd для чтения одного события из Subscriber.
//
// Функция-конвертер вызывается для каждого полученного события и должна
// возвращать Bubble Tea сообщение. После обработки события Update()
// должен снова вернуть ReceiveEventCmd, чтобы продолжить чтение.
func ReceiveEventCmd(sub events.Subscriber, converter func(events.Event) tea.Msg) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return SubscriptionClosedMsg{}
		}
		return converter(event)
	}
}

// ToEventMsg — стандартный конвертер для ReceiveEventCmd.
func ToEventMsg(event events.Event) tea.Msg {
	return EventMsg(event)
}
