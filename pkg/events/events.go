// Package events предоставляет интерфейсы для реализации Port & Adapter паттерна.
//
// Это Port (интерфейс) для подписки на события пайплайна классификации.
// Позволяет подключать любой UI (TUI, CLI, логгер) без изменения логики
// оркестратора и клиента.
//
// # Port & Adapter Pattern
//
//	Port — это интерфейс (Emitter, Subscriber), определённый в библиотеке.
//	Adapter — это реализация интерфейса для конкретного UI.
//
// # Basic Usage
//
//	// В композиции (cmd/gomi):
//	emitter := events.NewChanEmitter(32)
//	orch := orchestrator.New(client, store, orchestrator.WithEmitter(emitter))
//
//	// В UI (internal/ui/):
//	for event := range emitter.Subscribe().Events() {
//	    switch event.Type {
//	    case events.EventPhaseChanged:
//	        ui.redraw()
//	    case events.EventResult:
//	        ui.showResult(event.Data)
//	    }
//	}
//
// # Thread Safety
//
// Все реализации интерфейсов должны быть thread-safe.
//
// # Rule 11: Context Propagation
//
// Emitter.Emit() принимает context.Context для отмены операции.
package events

import (
	"context"
	"time"

	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

// EventType представляет тип события пайплайна.
type EventType string

const (
	// EventPhaseChanged отправляется при каждом переходе фазы оркестратора.
	EventPhaseChanged EventType = "phase_changed"

	// EventCompressed отправляется после попытки сжатия изображения.
	EventCompressed EventType = "compressed"

	// EventResult отправляется когда классификация успешно завершена.
	EventResult EventType = "result"

	// EventError отправляется когда отправка завершилась ошибкой.
	EventError EventType = "error"

	// EventStale отправляется когда ответ пришёл после сброса и был отброшен.
	EventStale EventType = "stale"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс,
// что обеспечивает compile-time type safety.
type EventData interface {
	eventData()
}

// PhaseData содержит данные для EventPhaseChanged.
type PhaseData struct {
	From string
	To   string
	File string // Имя выбранного файла (пусто в Idle)
}

func (PhaseData) eventData() {}

// CompressionData содержит данные для EventCompressed.
type CompressionData struct {
	Applied      bool
	OriginalSize int64
	OutputSize   int64
	Width        int
	Height       int
	Reason       string // Причина отката на оригинал (пусто если Applied)
}

func (CompressionData) eventData() {}

// ResultData содержит данные для EventResult.
type ResultData struct {
	Result *gomi.ClassificationResult
}

func (ResultData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	Err *gomi.OperationError
}

func (ErrorData) eventData() {}

// StaleData содержит данные для EventStale.
type StaleData struct {
	Cycle string
}

func (StaleData) eventData() {}

// Event представляет событие пайплайна.
//
// Для каждого EventType существует соответствующий тип данных:
//   - EventPhaseChanged: PhaseData
//   - EventCompressed: CompressionData
//   - EventResult: ResultData
//   - EventError: ErrorData
//   - EventStale: StaleData
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// New создаёт событие с текущим временем.
func New(t EventType, data EventData) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// Emitter — это Port для отправки событий.
//
// Emitter инвертирует зависимость: оркестратор и клиент зависят
// от этого интерфейса, а не от конкретного UI.
//
// Rule 11: все операции должны уважать context.Context.
type Emitter interface {
	// Emit отправляет событие.
	//
	// Если context отменён, операция должна прерваться.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
//
// Rule 5: thread-safe операции.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	//
	// Канал закрывается при закрытии эмиттера.
	Events() <-chan Event

	// Close освобождает ресурсы подписчика.
	Close()
}

// NopEmitter отбрасывает все события.
type NopEmitter struct{}

// Emit ничего не делает.
func (NopEmitter) Emit(context.Context, Event) {}

var _ Emitter = NopEmitter{}
