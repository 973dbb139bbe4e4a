// Package fixture loads survey content described in YAML.
//
//	name: Diagnostic
//	question_sets:
//	  - heading: Site
//	    icon: house
//	    questions:
//	      - text: Is the site exposed to floods?
//	        priority: 5
//	        choices:
//	          - {value: yes, text: Yes, signals: [flood]}
//	          - {value: no, text: No}
//	      - text: How often?
//	        precondition: [flood]
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	"github.com/urbanvitaliz/survey/model"
	"github.com/urbanvitaliz/survey/store"
	"gopkg.in/yaml.v3"
)

type surveyDoc struct {
	Name         string           `yaml:"name"`
	QuestionSets []questionSetDoc `yaml:"question_sets"`
}

type questionSetDoc struct {
	Heading    string        `yaml:"heading"`
	Icon       string        `yaml:"icon"`
	Subheading string        `yaml:"subheading"`
	Questions  []questionDoc `yaml:"questions"`
}

type questionDoc struct {
	Text         string      `yaml:"text"`
	How          string      `yaml:"how"`
	Why          string      `yaml:"why"`
	Multiple     bool        `yaml:"multiple"`
	Priority     int         `yaml:"priority"`
	Precondition model.Tags  `yaml:"precondition"`
	Choices      []choiceDoc `yaml:"choices"`
}

type choiceDoc struct {
	Value   string     `yaml:"value"`
	Text    string     `yaml:"text"`
	Signals model.Tags `yaml:"signals"`
}

// Decode reads a survey description and checks it the way the editor
// checks its input.
func Decode(r io.Reader) (model.Survey, error) {
	doc := surveyDoc{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return model.Survey{}, fmt.Errorf("fixture: %w", err)
	}

	var errs *multierror.Error
	check := func(err error, where string) {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", where, e))
			}
		}
	}

	survey := model.Survey{Name: doc.Name}
	check(survey.Validate(), "survey")
	for i, sd := range doc.QuestionSets {
		set := model.QuestionSet{Heading: sd.Heading, Icon: sd.Icon, Subheading: sd.Subheading}
		check(set.Validate(), fmt.Sprintf("question set %d", i+1))
		for j, qd := range sd.Questions {
			q := model.Question{
				Text:         qd.Text,
				How:          qd.How,
				Why:          qd.Why,
				IsMultiple:   qd.Multiple,
				Priority:     qd.Priority,
				Precondition: qd.Precondition,
			}
			where := fmt.Sprintf("question set %d question %d", i+1, j+1)
			check(q.Validate(), where)
			for _, cd := range qd.Choices {
				c := model.Choice{Value: cd.Value, Text: cd.Text, Signals: cd.Signals}
				check(c.Validate(), fmt.Sprintf("%s choice %q", where, cd.Value))
				q.Choices = append(q.Choices, c)
			}
			set.Questions = append(set.Questions, q)
		}
		survey.QuestionSets = append(survey.QuestionSets, set)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return model.Survey{}, fmt.Errorf("fixture: %w", err)
	}
	return survey, nil
}

// Import inserts the survey and its content, in document order, and fills in
// the generated ids.
func Import(ctx context.Context, st *store.Store, survey *model.Survey) error {
	if err := st.CreateSurvey(ctx, survey); err != nil {
		return err
	}
	for i := range survey.QuestionSets {
		set := &survey.QuestionSets[i]
		set.SurveyID = survey.ID
		if err := st.CreateQuestionSet(ctx, set); err != nil {
			return err
		}
		for j := range set.Questions {
			q := &set.Questions[j]
			q.QuestionSetID = set.ID
			if err := st.CreateQuestion(ctx, q); err != nil {
				return err
			}
			for k := range q.Choices {
				c := &q.Choices[k]
				c.QuestionID = q.ID
				if err := st.CreateChoice(ctx, c); err != nil {
					return fmt.Errorf("question %q choice %q: %w", q.Text, c.Value, err)
				}
			}
		}
	}
	return nil
}

// LoadFile decodes the file at path and imports it in a single transaction.
func LoadFile(ctx context.Context, db *sqlx.DB, path string) (model.Survey, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Survey{}, err
	}
	defer f.Close()

	survey, err := Decode(f)
	if err != nil {
		return model.Survey{}, err
	}

	err = store.InTx(ctx, db, func(st *store.Store) error {
		return Import(ctx, st, &survey)
	})
	return survey, err
}
