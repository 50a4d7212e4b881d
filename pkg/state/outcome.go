package state

import (
	"github.com/google/uuid"

	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

// CycleID идентифицирует один цикл отправки.
//
// Нулевое значение означает "нет открытого цикла".
type CycleID uuid.UUID

// NewCycleID создаёт новый случайный идентификатор.
func NewCycleID() CycleID {
	return CycleID(uuid.New())
}

// String возвращает UUID в каноническом виде.
func (c CycleID) String() string {
	return uuid.UUID(c).String()
}

// IsZero true для пустого идентификатора.
func (c CycleID) IsZero() bool {
	return uuid.UUID(c) == uuid.Nil
}

// OutcomeKind — тег варианта Outcome.
type OutcomeKind string

const (
	OutcomeIdle   OutcomeKind = "idle"
	OutcomeResult OutcomeKind = "result"
	OutcomeError  OutcomeKind = "error"
)

// Outcome — sealed tagged variant: Idle | HasResult | HasError.
//
// Результат и ошибка не могут существовать одновременно: это разные
// варианты, а не два nullable поля.
type Outcome interface {
	Kind() OutcomeKind
	outcome()
}

// Idle — ни результата, ни ошибки.
type Idle struct{}

// HasResult — последняя отправка успешна.
type HasResult struct {
	Result *gomi.ClassificationResult
}

// HasError — последняя отправка завершилась ошибкой.
type HasError struct {
	Err *gomi.OperationError
}

func (Idle) Kind() OutcomeKind      { return OutcomeIdle }
func (HasResult) Kind() OutcomeKind { return OutcomeResult }
func (HasError) Kind() OutcomeKind  { return OutcomeError }

func (Idle) outcome()      {}
func (HasResult) outcome() {}
func (HasError) outcome()  {}
