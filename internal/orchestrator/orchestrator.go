// Package orchestrator реализует конечный автомат загрузки и результата.
//
// Фазы:
//
//	Idle ──Select──▶ Previewing ──Submit──▶ Submitting ──▶ Succeeded | Failed
//	  ▲                 │  ▲                                    │
//	  └────Discard──────┘  └──────────Select (новый файл)───────┘
//	  └──────────────────────────Reset (из любой фазы)──────────┘
//
// Соблюдение правил из dev_manifest.md:
//   - Работает через порт classifier.Classifier (Правило 4)
//   - Thread-safe: каждый переход под sync.Mutex, сетевой вызов вне мьютекса (Правило 5)
//   - Никаких panic — все ошибки возвращаются (Правило 7)
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ilkoid/gomi-ai/pkg/classifier"
	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/state"
	"github.com/ilkoid/gomi-ai/pkg/upload"
	"github.com/ilkoid/gomi-ai/pkg/utils"
)

// Phase — фаза конечного автомата.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePreviewing Phase = "previewing"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// ErrBusy возвращается Select во время отправки.
var ErrBusy = errors.New("submission in progress")

// ErrNotPreviewing возвращается Submit и Discard вне фазы Previewing.
//
// В том числе блокирует повторную отправку во время Submitting.
var ErrNotPreviewing = errors.New("no file is being previewed")

// ErrNoFile возвращается Select(nil).
var ErrNoFile = errors.New("file is required")

// Config конфигурация для создания Orchestrator.
type Config struct {
	// Classifier — клиент классификации (обязательный)
	Classifier classifier.Classifier

	// Store — состояние приложения (обязательный)
	Store *state.Store

	// Emitter — получатель событий переходов (опционально)
	Emitter events.Emitter
}

// Orchestrator управляет одним циклом: выбор → превью → отправка → исход.
type Orchestrator struct {
	classifier classifier.Classifier
	store      *state.Store
	emitter    events.Emitter

	// mu защищает фазу, файл и отказ валидации
	mu        sync.Mutex
	phase     Phase
	file      *upload.SelectedFile
	rejection *gomi.OperationError
}

// New создаёт Orchestrator в фазе Idle.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("cfg.Classifier is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("cfg.Store is required")
	}
	if cfg.Emitter == nil {
		cfg.Emitter = events.NopEmitter{}
	}

	return &Orchestrator{
		classifier: cfg.Classifier,
		store:      cfg.Store,
		emitter:    cfg.Emitter,
		phase:      PhaseIdle,
	}, nil
}

// Phase возвращает текущую фазу.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// File возвращает выбранный файл (nil в Idle).
func (o *Orchestrator) File() *upload.SelectedFile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file
}

// Rejection возвращает локальную ошибку валидации последнего Submit.
//
// Показывается рядом с превью; в Store не попадает.
func (o *Orchestrator) Rejection() *gomi.OperationError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rejection
}

// Store возвращает хранилище состояния.
func (o *Orchestrator) Store() *state.Store {
	return o.store
}

// SetLanguage меняет язык следующих отправок.
func (o *Orchestrator) SetLanguage(lang gomi.Language) {
	o.store.SetLanguage(lang)
}

// Select выбирает файл и переходит в Previewing.
//
// Разрешён из любой фазы кроме Submitting. Сбрасывает исход
// предыдущей отправки и отказ валидации.
func (o *Orchestrator) Select(ctx context.Context, file *upload.SelectedFile) error {
	if file == nil {
		return ErrNoFile
	}

	o.mu.Lock()
	if o.phase == PhaseSubmitting {
		o.mu.Unlock()
		return ErrBusy
	}
	o.file = file
	o.rejection = nil
	o.store.ClearOutcome()
	ev := o.transition(PhasePreviewing)
	o.mu.Unlock()

	utils.Debug("File selected", "file", file.Name, "type", file.MIMEType, "bytes", file.Size())
	o.emit(ctx, ev)
	return nil
}

// Discard отменяет выбор: Previewing → Idle.
func (o *Orchestrator) Discard(ctx context.Context) error {
	o.mu.Lock()
	if o.phase != PhasePreviewing {
		o.mu.Unlock()
		return ErrNotPreviewing
	}
	o.file = nil
	o.rejection = nil
	ev := o.transition(PhaseIdle)
	o.mu.Unlock()

	o.emit(ctx, ev)
	return nil
}

// Reset возвращает автомат и Store в Idle из любой фазы.
//
// Запрос в полёте не прерывается: его поздний ответ будет отброшен.
func (o *Orchestrator) Reset(ctx context.Context) {
	o.mu.Lock()
	o.file = nil
	o.rejection = nil
	o.store.Reset()
	ev := o.transition(PhaseIdle)
	o.mu.Unlock()

	o.emit(ctx, ev)
}

// Submit отправляет выбранный файл и дожидается исхода.
//
// Только из Previewing (иначе ErrNotPreviewing). Локальная ошибка
// валидации оставляет фазу Previewing, сохраняется в Rejection()
// и возвращается без сетевого вызова.
//
// Иначе: Submitting → Classify → Succeeded | Failed. Если за время
// запроса был Reset, исход отбрасывается и возвращается ошибка
// state.ErrStaleCycle.
func (o *Orchestrator) Submit(ctx context.Context) (*gomi.ClassificationResult, error) {
	o.mu.Lock()
	if o.phase != PhasePreviewing {
		o.mu.Unlock()
		return nil, ErrNotPreviewing
	}

	file := o.file
	if err := upload.Validate(file); err != nil {
		o.rejection = gomi.AsOperationError(err)
		o.mu.Unlock()
		utils.Info("Submission rejected locally", "file", file.Name, "kind", gomi.KindOf(err))
		return nil, err
	}

	cycle, err := o.store.BeginSubmission()
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.rejection = nil
	lang := o.store.Language()
	ev := o.transition(PhaseSubmitting)
	o.mu.Unlock()

	o.emit(ctx, ev)
	utils.Info("Submission started", "cycle", cycle, "file", file.Name, "lang", lang)

	// Сетевой вызов вне мьютекса: Reset и чтение фазы не блокируются
	result, classifyErr := o.classifier.Classify(ctx, file, lang)

	return o.settle(ctx, cycle, result, classifyErr)
}

// settle записывает исход цикла.
func (o *Orchestrator) settle(ctx context.Context, cycle state.CycleID, result *gomi.ClassificationResult, classifyErr error) (*gomi.ClassificationResult, error) {
	o.mu.Lock()

	var storeErr error
	if classifyErr == nil {
		storeErr = o.store.SetResult(cycle, result)
	} else {
		storeErr = o.store.SetError(cycle, classifyErr)
	}

	if storeErr != nil {
		o.mu.Unlock()
		if state.IsStale(storeErr) {
			utils.Warn("Discarding late response after reset", "cycle", cycle)
			o.emit(ctx, events.New(events.EventStale, events.StaleData{Cycle: cycle.String()}))
			return nil, storeErr
		}
		// Невалидный исход (nil результат) закрываем ошибкой, чтобы не зависнуть в Submitting
		return o.settle(ctx, cycle, nil, gomi.NewError(gomi.KindUnknown, storeErr))
	}

	var phaseEv, outcomeEv events.Event
	if classifyErr == nil {
		phaseEv = o.transition(PhaseSucceeded)
		outcomeEv = events.New(events.EventResult, events.ResultData{Result: result})
	} else {
		phaseEv = o.transition(PhaseFailed)
		outcomeEv = events.New(events.EventError, events.ErrorData{Err: gomi.AsOperationError(classifyErr)})
	}
	o.mu.Unlock()

	o.emit(ctx, phaseEv)
	o.emit(ctx, outcomeEv)

	if classifyErr != nil {
		return nil, gomi.AsOperationError(classifyErr)
	}
	return result, nil
}

// transition меняет фазу и возвращает событие. Вызывается под o.mu.
func (o *Orchestrator) transition(to Phase) events.Event {
	from := o.phase
	o.phase = to

	name := ""
	if o.file != nil {
		name = o.file.Name
	}
	return events.New(events.EventPhaseChanged, events.PhaseData{From: string(from), To: string(to), File: name})
}

// emit отправляет событие вне мьютекса: медленный подписчик
// не должен блокировать переходы.
func (o *Orchestrator) emit(ctx context.Context, ev events.Event) {
	o.emitter.Emit(ctx, ev)
}
