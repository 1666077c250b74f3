package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMutators struct {
	completeOutcome Outcome
	reduceOutcome   Outcome
	completeErr     error
	reduceErr       error

	completed []uint
	reduced   []uint
}

func (f *fakeMutators) CompleteChallenge(userID, challengeID uint) (Outcome, error) {
	f.completed = append(f.completed, challengeID)
	return f.completeOutcome, f.completeErr
}

func (f *fakeMutators) ReduceHearts(userID, challengeID uint) (Outcome, error) {
	f.reduced = append(f.reduced, challengeID)
	return f.reduceOutcome, f.reduceErr
}

func twoOptionChallenge(id uint, completed bool) Challenge {
	return Challenge{
		ID:        id,
		Type:      "SELECT",
		Question:  "pick one",
		Completed: completed,
		Options: []Option{
			{ID: id*10 + 1, Text: "right", Correct: true},
			{ID: id*10 + 2, Text: "wrong"},
		},
	}
}

func newTestSession(challenges []Challenge, hearts int, initialPercentage float64) *Session {
	return NewSession(1, 7, challenges, hearts, initialPercentage, 5, 10)
}

func TestSessionStartsAtFirstIncompleteChallenge(t *testing.T) {
	s := newTestSession([]Challenge{
		twoOptionChallenge(1, true),
		twoOptionChallenge(2, true),
		twoOptionChallenge(3, false),
	}, 5, 67)

	assert.Equal(t, 2, s.State().ActiveIndex)
	assert.False(t, s.Practice())
}

func TestSessionPracticeReplayStartsOver(t *testing.T) {
	s := newTestSession([]Challenge{
		twoOptionChallenge(1, true),
		twoOptionChallenge(2, true),
	}, 3, 100)

	state := s.State()
	assert.True(t, s.Practice())
	assert.Equal(t, 0, state.ActiveIndex)
	assert.Equal(t, float64(0), state.Percentage)
}

func TestSessionCorrectAnswerAdvances(t *testing.T) {
	m := &fakeMutators{}
	s := newTestSession([]Challenge{
		twoOptionChallenge(1, false),
		twoOptionChallenge(2, false),
	}, 5, 0)

	_, err := s.Select(11)
	require.NoError(t, err)

	state, err := s.Continue(m)
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, state.Status)
	assert.Equal(t, float64(50), state.Percentage)
	assert.Equal(t, []uint{1}, m.completed)
	assert.Empty(t, m.reduced)

	state, err = s.Continue(m)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ActiveIndex)
	assert.Equal(t, StatusNone, state.Status)
	assert.Zero(t, state.SelectedOption)
}

func TestSessionWrongAnswerDecrementsAndRetries(t *testing.T) {
	m := &fakeMutators{}
	s := newTestSession([]Challenge{twoOptionChallenge(1, false)}, 5, 0)

	_, err := s.Select(12)
	require.NoError(t, err)

	state, err := s.Continue(m)
	require.NoError(t, err)
	assert.Equal(t, StatusWrong, state.Status)
	assert.Equal(t, 4, state.Hearts)
	assert.Equal(t, float64(0), state.Percentage)
	assert.Equal(t, []uint{1}, m.reduced)

	// The retry resets status and selection, keeps the cursor.
	state, err = s.Continue(m)
	require.NoError(t, err)
	assert.Equal(t, StatusNone, state.Status)
	assert.Equal(t, 0, state.ActiveIndex)
	assert.Zero(t, state.SelectedOption)
}

func TestSessionPracticeAndSubscriptionOutcomesSpareHearts(t *testing.T) {
	for _, outcome := range []Outcome{OutcomePractice, OutcomeSubscription} {
		m := &fakeMutators{reduceOutcome: outcome}
		s := newTestSession([]Challenge{twoOptionChallenge(1, false)}, 3, 0)

		_, err := s.Select(12)
		require.NoError(t, err)

		state, err := s.Continue(m)
		require.NoError(t, err)
		assert.Equal(t, StatusWrong, state.Status)
		assert.Equal(t, 3, state.Hearts)
	}
}

func TestSessionHeartsOutcomeRaisesModal(t *testing.T) {
	m := &fakeMutators{reduceOutcome: OutcomeHearts}
	s := newTestSession([]Challenge{twoOptionChallenge(1, false)}, 0, 0)

	_, err := s.Select(12)
	require.NoError(t, err)

	state, err := s.Continue(m)
	require.NoError(t, err)
	assert.True(t, state.HeartsModal)
	// Grading was refused: no status change, the answer can be resubmitted.
	assert.Equal(t, StatusNone, state.Status)
	assert.Equal(t, 0, state.Hearts)
}

func TestSessionPracticeHealCapsAtMaxHearts(t *testing.T) {
	m := &fakeMutators{}
	s := newTestSession([]Challenge{
		twoOptionChallenge(1, true),
		twoOptionChallenge(2, true),
	}, 5, 100)

	_, err := s.Select(11)
	require.NoError(t, err)

	state, err := s.Continue(m)
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, state.Status)
	assert.Equal(t, 5, state.Hearts)
}

func TestSessionPracticeHealBelowMax(t *testing.T) {
	m := &fakeMutators{}
	s := newTestSession([]Challenge{
		twoOptionChallenge(1, true),
	}, 2, 100)

	_, err := s.Select(11)
	require.NoError(t, err)

	state, err := s.Continue(m)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Hearts)
}

func TestSessionCompletionScreen(t *testing.T) {
	m := &fakeMutators{}
	s := newTestSession([]Challenge{
		twoOptionChallenge(1, false),
		twoOptionChallenge(2, false),
	}, 5, 0)

	for _, optionID := range []uint{11, 21} {
		_, err := s.Select(optionID)
		require.NoError(t, err)
		_, err = s.Continue(m)
		require.NoError(t, err)
		_, err = s.Continue(m)
		require.NoError(t, err)
	}

	state := s.State()
	assert.True(t, state.Finished)
	assert.Equal(t, 20, state.Points)
	assert.Equal(t, StatusNone, state.Status)

	// Further continues are a no-op, not a crash.
	state, err := s.Continue(m)
	require.NoError(t, err)
	assert.True(t, state.Finished)

	_, err = s.Select(11)
	assert.ErrorIs(t, err, ErrFinished)
}

func TestSessionSelectAfterGradingRejected(t *testing.T) {
	m := &fakeMutators{}
	s := newTestSession([]Challenge{twoOptionChallenge(1, false)}, 5, 0)

	_, err := s.Select(12)
	require.NoError(t, err)
	_, err = s.Continue(m)
	require.NoError(t, err)

	_, err = s.Select(11)
	assert.ErrorIs(t, err, ErrAnswerLocked)
}

func TestSessionContinueWithoutSelection(t *testing.T) {
	m := &fakeMutators{}
	s := newTestSession([]Challenge{twoOptionChallenge(1, false)}, 5, 0)

	_, err := s.Continue(m)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Empty(t, m.completed)
	assert.Empty(t, m.reduced)
}

func TestSessionReselectBeforeGrading(t *testing.T) {
	s := newTestSession([]Challenge{twoOptionChallenge(1, false)}, 5, 0)

	_, err := s.Select(12)
	require.NoError(t, err)
	state, err := s.Select(11)
	require.NoError(t, err)
	assert.Equal(t, uint(11), state.SelectedOption)
}

func TestSessionMutatorErrorLeavesStateUntouched(t *testing.T) {
	m := &fakeMutators{reduceErr: errors.New("db down")}
	s := newTestSession([]Challenge{twoOptionChallenge(1, false)}, 5, 0)

	_, err := s.Select(12)
	require.NoError(t, err)

	state, err := s.Continue(m)
	assert.Error(t, err)
	assert.Equal(t, StatusNone, state.Status)
	assert.Equal(t, 5, state.Hearts)
}

// blockingMutators parks inside CompleteChallenge until released, so tests
// can observe the session mid-grading.
type blockingMutators struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingMutators) CompleteChallenge(userID, challengeID uint) (Outcome, error) {
	close(b.entered)
	<-b.release
	return OutcomeOK, nil
}

func (b *blockingMutators) ReduceHearts(userID, challengeID uint) (Outcome, error) {
	return OutcomeOK, nil
}

func TestSessionSingleFlightWhileGrading(t *testing.T) {
	m := &blockingMutators{entered: make(chan struct{}), release: make(chan struct{})}
	s := newTestSession([]Challenge{twoOptionChallenge(1, false)}, 5, 0)

	_, err := s.Select(11)
	require.NoError(t, err)

	type result struct {
		state State
		err   error
	}
	done := make(chan result, 1)
	go func() {
		state, err := s.Continue(m)
		done <- result{state, err}
	}()

	<-m.entered

	// The mutator call is in flight: every transition is refused.
	_, err = s.Continue(m)
	assert.ErrorIs(t, err, ErrPending)
	_, err = s.Select(12)
	assert.ErrorIs(t, err, ErrPending)

	close(m.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, StatusCorrect, res.state.Status)

	// The flag clears with the submission; the session moves again.
	state, err := s.Continue(m)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ActiveIndex)
}

func TestSessionChallengeWithoutCorrectOption(t *testing.T) {
	m := &fakeMutators{}
	s := newTestSession([]Challenge{{
		ID:       1,
		Type:     "SELECT",
		Question: "broken",
		Options:  []Option{{ID: 11, Text: "a"}, {ID: 12, Text: "b"}},
	}}, 5, 0)

	_, err := s.Select(11)
	require.NoError(t, err)

	state, err := s.Continue(m)
	require.NoError(t, err)
	assert.Equal(t, StatusNone, state.Status)
	assert.Empty(t, m.completed)
	assert.Empty(t, m.reduced)
}
