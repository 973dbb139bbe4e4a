package survey

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/urbanvitaliz/survey/model"
)

// NewAnswer validates the submitted values against q and builds the answer
// to record, with the signals of the chosen choices copied onto it.
func NewAnswer(sess model.Session, q *model.Question, values []string, comment string) (model.Answer, error) {
	var errs *multierror.Error

	cleaned := make(model.Values, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		cleaned = append(cleaned, v)
	}

	switch {
	case len(cleaned) == 0:
		errs = multierror.Append(errs, fmt.Errorf("question %d: a value is required", q.ID))
	case len(cleaned) > 1 && !q.IsMultiple:
		errs = multierror.Append(errs, fmt.Errorf("question %d: only one value allowed", q.ID))
	}

	if len(q.Choices) > 0 {
		known := make(map[string]bool, len(q.Choices))
		for _, c := range q.Choices {
			known[c.Value] = true
		}
		for _, v := range cleaned {
			if !known[v] {
				errs = multierror.Append(errs, fmt.Errorf("question %d: unknown choice %q", q.ID, v))
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return model.Answer{}, err
	}

	return model.Answer{
		SessionID:  sess.ID,
		QuestionID: q.ID,
		Values:     cleaned,
		Comment:    strings.TrimSpace(comment),
		Signals:    SignalsFor(q, cleaned),
	}, nil
}
