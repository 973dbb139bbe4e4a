package survey

import "github.com/urbanvitaliz/survey/model"

// Signals is the union of the tags recorded on answers.
func Signals(answers []model.Answer) model.Tags {
	signals := model.NewTags()
	for _, a := range answers {
		signals = signals.Union(a.Signals)
	}
	return signals
}

// Satisfied reports whether q may be presented given the accumulated signals.
func Satisfied(q *model.Question, signals model.Tags) bool {
	return model.NewTags(q.Precondition...).SubsetOf(signals)
}

// SignalsFor returns the tags contributed by the choices whose value is in
// values. Unknown values contribute nothing.
func SignalsFor(q *model.Question, values []string) model.Tags {
	chosen := make(map[string]bool, len(values))
	for _, v := range values {
		chosen[v] = true
	}
	signals := model.NewTags()
	for _, c := range q.Choices {
		if chosen[c.Value] {
			signals = signals.Union(c.Signals)
		}
	}
	return signals
}
