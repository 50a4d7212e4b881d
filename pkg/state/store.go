// Package state предоставляет thread-safe хранилище состояния приложения.
//
// Store содержит:
//   - выбранный язык ответа
//   - флаг "идёт отправка"
//   - исход последней отправки (Idle | HasResult | HasError)
//   - идентификатор открытого цикла отправки
//
// Package state следует правилам из dev_manifest.md:
//   - Rule 5: Thread-safe доступ через sync.RWMutex, никаких глобальных переменных
//   - Rule 6: Library code готовый к переиспользованию, без зависимостей от internal/
//   - Rule 7: Все ошибки возвращаются, никаких panic в бизнес-логике
package state

import (
	"sync"

	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

// Snapshot — согласованная копия состояния на момент чтения.
type Snapshot struct {
	Language     gomi.Language
	IsSubmitting bool
	Outcome      Outcome
	Cycle        CycleID // Открытый цикл (нулевой если отправки нет)
}

// Result возвращает результат, если исход — HasResult.
func (s Snapshot) Result() (*gomi.ClassificationResult, bool) {
	r, ok := s.Outcome.(HasResult)
	if !ok {
		return nil, false
	}
	return r.Result, true
}

// Err возвращает ошибку, если исход — HasError.
func (s Snapshot) Err() (*gomi.OperationError, bool) {
	e, ok := s.Outcome.(HasError)
	if !ok {
		return nil, false
	}
	return e.Err, true
}

// Reader — чтение состояния (UI, CLI).
type Reader interface {
	Snapshot() Snapshot
	Language() gomi.Language
}

// Writer — изменение состояния (оркестратор).
type Writer interface {
	SetLanguage(lang gomi.Language)
	BeginSubmission() (CycleID, error)
	SetResult(cycle CycleID, result *gomi.ClassificationResult) error
	SetError(cycle CycleID, err error) error
	ClearOutcome()
	Reset()
}

// Store — единственный источник состояния приложения.
//
// Rule 5: каждая мутация — одна критическая секция, частичное
// изменение снаружи не наблюдаемо.
type Store struct {
	mu         sync.RWMutex
	language   gomi.Language
	submitting bool
	outcome    Outcome
	cycle      CycleID
}

var (
	_ Reader = (*Store)(nil)
	_ Writer = (*Store)(nil)
)

// NewStore создаёт хранилище с выбранным языком и исходом Idle.
// Пустой язык заменяется на gomi.DefaultLanguage.
func NewStore(lang gomi.Language) *Store {
	if lang == "" {
		lang = gomi.DefaultLanguage
	}
	return &Store{language: lang, outcome: Idle{}}
}

// SetLanguage устанавливает язык ответа. Не влияет на отправку в полёте.
func (s *Store) SetLanguage(lang gomi.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
}

// Language возвращает текущий язык.
func (s *Store) Language() gomi.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// BeginSubmission открывает новый цикл отправки.
//
// Устанавливает IsSubmitting и сбрасывает исход в Idle.
// Возвращает ErrSubmissionInFlight если цикл уже открыт.
func (s *Store) BeginSubmission() (CycleID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return CycleID{}, ErrSubmissionInFlight
	}
	s.cycle = NewCycleID()
	s.submitting = true
	s.outcome = Idle{}
	return s.cycle, nil
}

// SetResult завершает цикл успехом.
//
// Ошибка исчезает вместе с заменой варианта, IsSubmitting сбрасывается.
// Возвращает *StaleCycleError если cycle не текущий (состояние не меняется).
func (s *Store) SetResult(cycle CycleID, result *gomi.ClassificationResult) error {
	if result == nil {
		return ErrNilResult
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCycle(cycle); err != nil {
		return err
	}
	s.outcome = HasResult{Result: result}
	s.submitting = false
	s.cycle = CycleID{}
	return nil
}

// SetError завершает цикл ошибкой.
//
// Посторонние ошибки приводятся к *gomi.OperationError (KindUnknown).
// Возвращает *StaleCycleError если cycle не текущий (состояние не меняется).
func (s *Store) SetError(cycle CycleID, err error) error {
	opErr := gomi.AsOperationError(err)
	if opErr == nil {
		opErr = gomi.NewError(gomi.KindUnknown, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCycle(cycle); err != nil {
		return err
	}
	s.outcome = HasError{Err: opErr}
	s.submitting = false
	s.cycle = CycleID{}
	return nil
}

// ClearOutcome возвращает исход в Idle (выбран новый файл).
// Во время отправки ничего не делает: исход принадлежит открытому циклу.
func (s *Store) ClearOutcome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return
	}
	s.outcome = Idle{}
}

// Reset возвращает состояние к Idle и закрывает открытый цикл.
//
// Язык сохраняется. Поздний ответ закрытого цикла будет отклонён
// через ErrStaleCycle.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = Idle{}
	s.submitting = false
	s.cycle = CycleID{}
}

// Snapshot возвращает согласованную копию состояния.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Language:     s.language,
		IsSubmitting: s.submitting,
		Outcome:      s.outcome,
		Cycle:        s.cycle,
	}
}

// checkCycle вызывается под s.mu.
func (s *Store) checkCycle(cycle CycleID) error {
	if !s.submitting || s.cycle != cycle || cycle.IsZero() {
		return &StaleCycleError{Got: cycle, Current: s.cycle}
	}
	return nil
}
