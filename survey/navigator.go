package survey

import (
	"context"
	"errors"

	"github.com/urbanvitaliz/survey/model"
)

var ErrNoCurrentQuestion = errors.New("survey: previous question needs a current question")

// Store is the persisted content the navigator reads on every call.
type Store interface {
	// QuestionSets returns the sets of a survey with their questions.
	QuestionSets(ctx context.Context, surveyID int64) ([]model.QuestionSet, error)
	// Answers returns the answers recorded in a session.
	Answers(ctx context.Context, sessionID int64) ([]model.Answer, error)
}

// Mode selects whether navigation crosses question set boundaries.
type Mode int

const (
	// ModeContinuous rolls over into the following (or preceding) set, and
	// starts from the first set that has questions.
	ModeContinuous Mode = iota
	// ModePerSet pages within a single set: navigation starts at the first
	// question of the first set, even when that set is empty, and stops at
	// the end of the current set.
	ModePerSet
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "continuous":
		return ModeContinuous, nil
	case "per-set":
		return ModePerSet, nil
	}
	return 0, errors.New("survey: unknown navigation mode " + s)
}

type Navigator struct {
	store Store
	mode  Mode
}

func NewNavigator(store Store, mode Mode) *Navigator {
	return &Navigator{store: store, mode: mode}
}

// snapshot is what one navigation call sees of the session.
type snapshot struct {
	outline  *Outline
	answered map[int64]bool
	signals  model.Tags
}

func (n *Navigator) load(ctx context.Context, sess model.Session) (*snapshot, error) {
	sets, err := n.store.QuestionSets(ctx, sess.SurveyID)
	if err != nil {
		return nil, err
	}
	answers, err := n.store.Answers(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	answered := make(map[int64]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}
	return &snapshot{
		outline:  NewOutline(sets),
		answered: answered,
		signals:  Signals(answers),
	}, nil
}

func (s *snapshot) eligible(q *model.Question) bool {
	return !s.answered[q.ID] && Satisfied(q, s.signals)
}

func (n *Navigator) start(o *Outline) *model.Question {
	if n.mode == ModePerSet {
		return o.FirstQuestion()
	}
	return o.firstNonEmpty()
}

func (n *Navigator) forward(o *Outline, q *model.Question) *model.Question {
	if n.mode == ModePerSet {
		return o.Next(q)
	}
	return o.following(q)
}

func (n *Navigator) backward(o *Outline, q *model.Question) *model.Question {
	if n.mode == ModePerSet {
		return o.Previous(q)
	}
	return o.preceding(q)
}

// FirstQuestion returns the first question of the survey regardless of
// preconditions and answers.
func (n *Navigator) FirstQuestion(ctx context.Context, sess model.Session) (*model.Question, error) {
	sets, err := n.store.QuestionSets(ctx, sess.SurveyID)
	if err != nil {
		return nil, err
	}
	return n.start(NewOutline(sets)), nil
}

// NextQuestion returns the first unanswered question with a satisfied
// precondition after from, or from the beginning of the survey when from is
// nil. It returns nil when no such question is left.
func (n *Navigator) NextQuestion(ctx context.Context, sess model.Session, from *model.Question) (*model.Question, error) {
	snap, err := n.load(ctx, sess)
	if err != nil {
		return nil, err
	}

	var candidate *model.Question
	if from == nil {
		candidate = n.start(snap.outline)
	} else {
		candidate = n.forward(snap.outline, from)
	}
	for candidate != nil {
		if snap.eligible(candidate) {
			return candidate, nil
		}
		candidate = n.forward(snap.outline, candidate)
	}
	return nil, nil
}

// PreviousQuestion is the mirror of NextQuestion. There is no last question
// bootstrap: from is required.
func (n *Navigator) PreviousQuestion(ctx context.Context, sess model.Session, from *model.Question) (*model.Question, error) {
	if from == nil {
		return nil, ErrNoCurrentQuestion
	}
	snap, err := n.load(ctx, sess)
	if err != nil {
		return nil, err
	}

	for candidate := n.backward(snap.outline, from); candidate != nil; candidate = n.backward(snap.outline, candidate) {
		if snap.eligible(candidate) {
			return candidate, nil
		}
	}
	return nil, nil
}

// CheckPrecondition reports whether every tag required by q has been
// signalled by the answers currently recorded in the session.
func (n *Navigator) CheckPrecondition(ctx context.Context, q *model.Question, sess model.Session) (bool, error) {
	signals, err := n.Signals(ctx, sess)
	if err != nil {
		return false, err
	}
	return Satisfied(q, signals), nil
}

// Signals recomputes the session's signals from its answers.
func (n *Navigator) Signals(ctx context.Context, sess model.Session) (model.Tags, error) {
	answers, err := n.store.Answers(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return Signals(answers), nil
}

type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

func (n *Navigator) Progress(ctx context.Context, sess model.Session) (Progress, error) {
	snap, err := n.load(ctx, sess)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{Total: snap.outline.Len()}
	for id := range snap.answered {
		if snap.outline.Question(id) != nil {
			p.Answered++
		}
	}
	return p, nil
}
