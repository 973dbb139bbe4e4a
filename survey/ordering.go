// Package survey walks respondents through the questions of a survey.
//
// Question sets are ordered by creation (ascending id) and the questions of a
// set by descending priority, ties broken by ascending id. A question is
// eligible once every tag of its precondition has been contributed by the
// choices of earlier answers.
package survey

import (
	"sort"

	"github.com/urbanvitaliz/survey/model"
)

// SortQuestions orders questions by descending priority, then ascending id.
func SortQuestions(questions []model.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Priority != questions[j].Priority {
			return questions[i].Priority > questions[j].Priority
		}
		return questions[i].ID < questions[j].ID
	})
}

// SortQuestionSets orders sets by ascending id and sorts each set's questions.
func SortQuestionSets(sets []model.QuestionSet) {
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].ID < sets[j].ID
	})
	for i := range sets {
		SortQuestions(sets[i].Questions)
	}
}

// FirstQuestionOf returns the first question of set in priority order.
func FirstQuestionOf(set model.QuestionSet) *model.Question {
	if len(set.Questions) == 0 {
		return nil
	}
	questions := append([]model.Question(nil), set.Questions...)
	SortQuestions(questions)
	return &questions[0]
}

type position struct {
	set, question int
}

// Outline is the ordered content of a survey with an index from question and
// set ids to their position. Soft-deleted entries are kept.
type Outline struct {
	sets      []model.QuestionSet
	questions map[int64]position
	setIndex  map[int64]int
}

// NewOutline sorts a copy of sets and indexes it.
func NewOutline(sets []model.QuestionSet) *Outline {
	o := &Outline{
		sets:      make([]model.QuestionSet, len(sets)),
		questions: make(map[int64]position),
		setIndex:  make(map[int64]int, len(sets)),
	}
	for i, set := range sets {
		set.Questions = append([]model.Question(nil), set.Questions...)
		o.sets[i] = set
	}
	SortQuestionSets(o.sets)

	for i, set := range o.sets {
		o.setIndex[set.ID] = i
		for j, q := range set.Questions {
			o.questions[q.ID] = position{i, j}
		}
	}
	return o
}

func (o *Outline) QuestionSets() []model.QuestionSet {
	return o.sets
}

// Len is the number of questions in the outline.
func (o *Outline) Len() int {
	return len(o.questions)
}

func (o *Outline) Question(id int64) *model.Question {
	pos, ok := o.questions[id]
	if !ok {
		return nil
	}
	return &o.sets[pos.set].Questions[pos.question]
}

// FirstQuestion returns the first question of the first set.
func (o *Outline) FirstQuestion() *model.Question {
	if len(o.sets) == 0 {
		return nil
	}
	return o.first(0)
}

func (o *Outline) first(set int) *model.Question {
	if len(o.sets[set].Questions) == 0 {
		return nil
	}
	return &o.sets[set].Questions[0]
}

// Next returns the question following q inside q's own question set, or nil
// when q is the last one or is unknown.
func (o *Outline) Next(q *model.Question) *model.Question {
	pos, ok := o.lookup(q)
	if !ok {
		return nil
	}
	questions := o.sets[pos.set].Questions
	if pos.question+1 >= len(questions) {
		return nil
	}
	return &questions[pos.question+1]
}

// Previous returns the question preceding q inside q's own question set.
func (o *Outline) Previous(q *model.Question) *model.Question {
	pos, ok := o.lookup(q)
	if !ok || pos.question == 0 {
		return nil
	}
	return &o.sets[pos.set].Questions[pos.question-1]
}

func (o *Outline) lookup(q *model.Question) (position, bool) {
	if q == nil {
		return position{}, false
	}
	pos, ok := o.questions[q.ID]
	return pos, ok
}

// NextSet returns the question set created after set in the same survey.
func (o *Outline) NextSet(set *model.QuestionSet) *model.QuestionSet {
	i, ok := o.setPosition(set)
	if !ok || i+1 >= len(o.sets) {
		return nil
	}
	return &o.sets[i+1]
}

// PreviousSet returns the question set created before set.
func (o *Outline) PreviousSet(set *model.QuestionSet) *model.QuestionSet {
	i, ok := o.setPosition(set)
	if !ok || i == 0 {
		return nil
	}
	return &o.sets[i-1]
}

func (o *Outline) setPosition(set *model.QuestionSet) (int, bool) {
	if set == nil {
		return 0, false
	}
	i, ok := o.setIndex[set.ID]
	return i, ok
}

// following is Next, rolling over into the first question of the next
// non-empty set once q's set is exhausted.
func (o *Outline) following(q *model.Question) *model.Question {
	if next := o.Next(q); next != nil {
		return next
	}
	pos, ok := o.lookup(q)
	if !ok {
		return nil
	}
	for set := o.NextSet(&o.sets[pos.set]); set != nil; set = o.NextSet(set) {
		if len(set.Questions) > 0 {
			return &set.Questions[0]
		}
	}
	return nil
}

// preceding is the mirror of following.
func (o *Outline) preceding(q *model.Question) *model.Question {
	if prev := o.Previous(q); prev != nil {
		return prev
	}
	pos, ok := o.lookup(q)
	if !ok {
		return nil
	}
	for set := o.PreviousSet(&o.sets[pos.set]); set != nil; set = o.PreviousSet(set) {
		if n := len(set.Questions); n > 0 {
			return &set.Questions[n-1]
		}
	}
	return nil
}

// firstNonEmpty returns the first question of the first set that has one.
func (o *Outline) firstNonEmpty() *model.Question {
	for i := range o.sets {
		if first := o.first(i); first != nil {
			return first
		}
	}
	return nil
}
