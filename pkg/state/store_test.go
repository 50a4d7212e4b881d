package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

func sampleResult() *gomi.ClassificationResult {
	return &gomi.ClassificationResult{PredictedClass: "burnable", Confidence: 0.7}
}

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore("")
	snap := s.Snapshot()

	assert.Equal(t, gomi.LangJapanese, snap.Language)
	assert.False(t, snap.IsSubmitting)
	assert.Equal(t, OutcomeIdle, snap.Outcome.Kind())
	assert.True(t, snap.Cycle.IsZero())
}

func TestStore_SetLanguage(t *testing.T) {
	s := NewStore(gomi.LangJapanese)
	s.SetLanguage(gomi.LangBoth)
	assert.Equal(t, gomi.LangBoth, s.Language())
}

func TestStore_BeginSubmission(t *testing.T) {
	s := NewStore(gomi.LangEnglish)

	cycle, err := s.BeginSubmission()
	require.NoError(t, err)
	assert.False(t, cycle.IsZero())

	snap := s.Snapshot()
	assert.True(t, snap.IsSubmitting)
	assert.Equal(t, cycle, snap.Cycle)

	_, err = s.BeginSubmission()
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
}

func TestStore_ResultThenErrorAreExclusive(t *testing.T) {
	s := NewStore(gomi.LangJapanese)

	cycle, err := s.BeginSubmission()
	require.NoError(t, err)
	require.NoError(t, s.SetResult(cycle, sampleResult()))

	snap := s.Snapshot()
	assert.False(t, snap.IsSubmitting)
	r, ok := snap.Result()
	require.True(t, ok)
	assert.Equal(t, "burnable", r.PredictedClass)
	_, hasErr := snap.Err()
	assert.False(t, hasErr)

	cycle, err = s.BeginSubmission()
	require.NoError(t, err)
	assert.Equal(t, OutcomeIdle, s.Snapshot().Outcome.Kind(), "begin clears previous outcome")

	require.NoError(t, s.SetError(cycle, gomi.NewError(gomi.KindTimeout, nil)))

	snap = s.Snapshot()
	assert.False(t, snap.IsSubmitting)
	_, hasResult := snap.Result()
	assert.False(t, hasResult)
	opErr, ok := snap.Err()
	require.True(t, ok)
	assert.Equal(t, gomi.KindTimeout, opErr.Kind)
}

func TestStore_SetErrorWrapsForeignErrors(t *testing.T) {
	s := NewStore(gomi.LangJapanese)
	cycle, _ := s.BeginSubmission()

	require.NoError(t, s.SetError(cycle, errors.New("boom")))

	opErr, ok := s.Snapshot().Err()
	require.True(t, ok)
	assert.Equal(t, gomi.KindUnknown, opErr.Kind)
}

func TestStore_ResetInvalidatesCycle(t *testing.T) {
	s := NewStore(gomi.LangEnglish)

	cycle, err := s.BeginSubmission()
	require.NoError(t, err)

	s.Reset()

	snap := s.Snapshot()
	assert.False(t, snap.IsSubmitting)
	assert.Equal(t, OutcomeIdle, snap.Outcome.Kind())
	assert.Equal(t, gomi.LangEnglish, snap.Language, "reset keeps language")

	err = s.SetResult(cycle, sampleResult())
	assert.True(t, IsStale(err))
	assert.Equal(t, OutcomeIdle, s.Snapshot().Outcome.Kind())

	var staleErr *StaleCycleError
	require.ErrorAs(t, err, &staleErr)
	assert.Equal(t, cycle, staleErr.Got)
}

func TestStore_OldCycleCannotSettleNewOne(t *testing.T) {
	s := NewStore(gomi.LangJapanese)

	old, _ := s.BeginSubmission()
	s.Reset()
	current, err := s.BeginSubmission()
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetError(old, gomi.NewError(gomi.KindUnreachable, nil)), ErrStaleCycle)
	assert.True(t, s.Snapshot().IsSubmitting, "current cycle still open")

	require.NoError(t, s.SetResult(current, sampleResult()))
	assert.ErrorIs(t, s.SetResult(current, sampleResult()), ErrStaleCycle, "cycle closes after settle")
}

func TestStore_SetResultNil(t *testing.T) {
	s := NewStore(gomi.LangJapanese)
	cycle, _ := s.BeginSubmission()

	assert.ErrorIs(t, s.SetResult(cycle, nil), ErrNilResult)
	assert.True(t, s.Snapshot().IsSubmitting)
}

func TestStore_ClearOutcome(t *testing.T) {
	s := NewStore(gomi.LangJapanese)
	cycle, _ := s.BeginSubmission()
	require.NoError(t, s.SetResult(cycle, sampleResult()))

	s.ClearOutcome()
	assert.Equal(t, OutcomeIdle, s.Snapshot().Outcome.Kind())

	_, _ = s.BeginSubmission()
	s.ClearOutcome()
	assert.True(t, s.Snapshot().IsSubmitting, "clear does not touch an open cycle")
}

func TestStore_ConcurrentSettleExactlyOneWins(t *testing.T) {
	s := NewStore(gomi.LangJapanese)
	cycle, err := s.BeginSubmission()
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				err = s.SetResult(cycle, sampleResult())
			} else {
				err = s.SetError(cycle, gomi.NewError(gomi.KindTimeout, nil))
			}
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
			snap := s.Snapshot()
			_, hasResult := snap.Result()
			_, hasErr := snap.Err()
			assert.False(t, hasResult && hasErr)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.False(t, s.Snapshot().IsSubmitting)
}
