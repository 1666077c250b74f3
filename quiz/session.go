package quiz

import (
	"errors"
	"sync"
)

// Outcome is the discriminated result of an economy mutator. Expected game
// states travel as outcomes, not errors, so callers can branch to modal
// prompts instead of failure toasts.
type Outcome string

const (
	OutcomeOK           Outcome = ""
	OutcomePractice     Outcome = "practice"
	OutcomeSubscription Outcome = "subscription"
	OutcomeHearts       Outcome = "hearts"
)

// Status is the per-challenge answer state within a session.
type Status string

const (
	StatusNone    Status = "none"
	StatusCorrect Status = "correct"
	StatusWrong   Status = "wrong"
)

var (
	ErrPending      = errors.New("a submission is already in flight")
	ErrFinished     = errors.New("lesson already completed")
	ErrNoSelection  = errors.New("no option selected")
	ErrAnswerLocked = errors.New("answer already submitted")
)

// Mutators is the server-side economy consumed by the session on each answer.
type Mutators interface {
	CompleteChallenge(userID, challengeID uint) (Outcome, error)
	ReduceHearts(userID, challengeID uint) (Outcome, error)
}

type Option struct {
	ID       uint   `json:"id"`
	Text     string `json:"text"`
	Correct  bool   `json:"-"`
	ImageSrc string `json:"image_src,omitempty"`
	AudioSrc string `json:"audio_src,omitempty"`
}

// Challenge is the session's immutable snapshot of one challenge. Completed
// reflects the learner's durable progress at session start.
type Challenge struct {
	ID        uint     `json:"id"`
	Type      string   `json:"type"`
	Question  string   `json:"question"`
	Completed bool     `json:"completed"`
	Options   []Option `json:"options"`
}

// State is the session snapshot returned to the client after every
// transition.
type State struct {
	LessonID       uint    `json:"lesson_id"`
	ActiveIndex    int     `json:"active_index"`
	Total          int     `json:"total"`
	SelectedOption uint    `json:"selected_option,omitempty"`
	Status         Status  `json:"status"`
	Hearts         int     `json:"hearts"`
	Percentage     float64 `json:"percentage"`
	Practice       bool    `json:"practice"`
	Finished       bool    `json:"finished"`
	Points         int     `json:"points,omitempty"`
	HeartsModal    bool    `json:"hearts_modal,omitempty"`
}

// Session is the lesson progression state machine for one learner. The
// challenge sequence is fixed for the session's lifetime; the cursor starts
// at the first incomplete challenge, or 0 when the lesson is being replayed
// as practice.
type Session struct {
	mu sync.Mutex

	userID     uint
	lessonID   uint
	challenges []Challenge
	maxHearts  int
	pointsPer  int

	activeIndex int
	selected    uint
	status      Status
	hearts      int
	percentage  float64
	practice    bool
	pending     bool
	heartsModal bool
}

// NewSession builds a session from the learner's durable state. An initial
// percentage of 100 marks a practice replay: the displayed percentage
// restarts at zero and correct answers heal hearts.
func NewSession(userID, lessonID uint, challenges []Challenge, hearts int, initialPercentage float64, maxHearts, pointsPerChallenge int) *Session {
	practice := initialPercentage == 100

	percentage := initialPercentage
	if practice {
		percentage = 0
	}

	activeIndex := 0
	for i, ch := range challenges {
		if !ch.Completed {
			activeIndex = i
			break
		}
	}

	return &Session{
		userID:      userID,
		lessonID:    lessonID,
		challenges:  challenges,
		maxHearts:   maxHearts,
		pointsPer:   pointsPerChallenge,
		activeIndex: activeIndex,
		status:      StatusNone,
		hearts:      hearts,
		percentage:  percentage,
		practice:    practice,
	}
}

// Practice reports whether this session replays an already-completed lesson.
func (s *Session) Practice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.practice
}

// Select records the learner's option choice. Only allowed before the answer
// has been submitted.
func (s *Session) Select(optionID uint) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finishedLocked() {
		return s.stateLocked(), ErrFinished
	}
	if s.pending {
		return s.stateLocked(), ErrPending
	}
	if s.status != StatusNone {
		return s.stateLocked(), ErrAnswerLocked
	}

	s.selected = optionID
	return s.stateLocked(), nil
}

// Continue advances the machine. After a wrong answer it resets for a retry,
// after a correct one it moves the cursor, and with a fresh selection it
// grades the answer through the mutators. Re-entrant calls while a mutator
// is in flight are rejected.
func (s *Session) Continue(m Mutators) (State, error) {
	s.mu.Lock()

	if s.pending {
		defer s.mu.Unlock()
		return s.stateLocked(), ErrPending
	}
	if s.finishedLocked() {
		defer s.mu.Unlock()
		return s.stateLocked(), nil
	}

	switch s.status {
	case StatusWrong:
		s.status = StatusNone
		s.selected = 0
		defer s.mu.Unlock()
		return s.stateLocked(), nil

	case StatusCorrect:
		s.activeIndex++
		s.status = StatusNone
		s.selected = 0
		defer s.mu.Unlock()
		return s.stateLocked(), nil
	}

	if s.selected == 0 {
		defer s.mu.Unlock()
		return s.stateLocked(), ErrNoSelection
	}

	challenge := s.challenges[s.activeIndex]
	correct := correctOption(challenge.Options)
	if correct == nil {
		// Content-integrity gap: a challenge without a correct option
		// cannot be graded. Stay put.
		defer s.mu.Unlock()
		return s.stateLocked(), nil
	}

	answeredRight := correct.ID == s.selected
	s.pending = true
	s.heartsModal = false
	s.mu.Unlock()

	// The mutator call runs outside the lock; the pending flag keeps the
	// session single-flight meanwhile.
	var outcome Outcome
	var err error
	if answeredRight {
		outcome, err = m.CompleteChallenge(s.userID, challenge.ID)
	} else {
		outcome, err = m.ReduceHearts(s.userID, challenge.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false

	if err != nil {
		// Local state stays untouched on a failed call.
		return s.stateLocked(), err
	}

	if outcome == OutcomeHearts {
		// Server says the floor is reached: surface the modal and
		// suppress any local change.
		s.heartsModal = true
		return s.stateLocked(), nil
	}

	if answeredRight {
		s.status = StatusCorrect
		s.percentage += 100 / float64(len(s.challenges))
		if s.practice && s.hearts < s.maxHearts {
			s.hearts++
		}
	} else {
		s.status = StatusWrong
		// Practice and subscription outcomes leave hearts alone.
		if outcome == OutcomeOK && s.hearts > 0 {
			s.hearts--
		}
	}

	return s.stateLocked(), nil
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) finishedLocked() bool {
	return s.activeIndex >= len(s.challenges)
}

func (s *Session) stateLocked() State {
	st := State{
		LessonID:       s.lessonID,
		ActiveIndex:    s.activeIndex,
		Total:          len(s.challenges),
		SelectedOption: s.selected,
		Status:         s.status,
		Hearts:         s.hearts,
		Percentage:     s.percentage,
		Practice:       s.practice,
		Finished:       s.finishedLocked(),
		HeartsModal:    s.heartsModal,
	}
	if st.Finished {
		st.Points = len(s.challenges) * s.pointsPer
		st.Status = StatusNone
		st.SelectedOption = 0
	}
	return st
}

func correctOption(options []Option) *Option {
	for i := range options {
		if options[i].Correct {
			return &options[i]
		}
	}
	return nil
}
