package state

import (
	"errors"
	"fmt"
)

// ErrSubmissionInFlight возвращается BeginSubmission, если цикл уже открыт.
//
// Защищает от повторной отправки до завершения текущей.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ErrStaleCycle возвращается SetResult/SetError, если цикл уже не текущий.
//
// Происходит когда Reset() случился во время запроса: поздний ответ
// не должен перезаписать состояние.
var ErrStaleCycle = errors.New("stale submission cycle")

// ErrNilResult возвращается SetResult при nil результате.
var ErrNilResult = errors.New("result is nil")

// StaleCycleError — ошибка с контекстом циклов.
//
// Поддерживает errors.Is() с ErrStaleCycle.
type StaleCycleError struct {
	Got     CycleID // Цикл, которым пытались завершить
	Current CycleID // Текущий открытый цикл (нулевой если нет)
}

func (e *StaleCycleError) Error() string {
	if e.Current.IsZero() {
		return fmt.Sprintf("stale submission cycle %s: no cycle is open", e.Got)
	}
	return fmt.Sprintf("stale submission cycle %s: current is %s", e.Got, e.Current)
}

// Is проверяет что ошибка является ErrStaleCycle.
func (e *StaleCycleError) Is(target error) bool {
	return target == ErrStaleCycle
}

// IsStale удобная обертка над errors.Is(err, ErrStaleCycle).
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleCycle)
}
