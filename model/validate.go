package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// limits mirror the column sizes of the schema
const (
	maxSurveyName   = 80
	maxHeading      = 255
	maxIcon         = 80
	maxQuestionText = 255
	maxChoiceValue  = 30
	maxChoiceText   = 255
)

func required(errs *multierror.Error, field, value string, max int) *multierror.Error {
	switch {
	case strings.TrimSpace(value) == "":
		return multierror.Append(errs, fmt.Errorf("%s is required", field))
	case utf8.RuneCountInString(value) > max:
		return multierror.Append(errs, fmt.Errorf("%s is longer than %d characters", field, max))
	}
	return errs
}

func (s Survey) Validate() error {
	return required(nil, "name", s.Name, maxSurveyName).ErrorOrNil()
}

func (set QuestionSet) Validate() error {
	errs := required(nil, "heading", set.Heading, maxHeading)
	if utf8.RuneCountInString(set.Icon) > maxIcon {
		errs = multierror.Append(errs, fmt.Errorf("icon is longer than %d characters", maxIcon))
	}
	return errs.ErrorOrNil()
}

func (q Question) Validate() error {
	return required(nil, "text", q.Text, maxQuestionText).ErrorOrNil()
}

// Validate rejects values with surrounding spaces: submitted answers are
// trimmed and could never match them.
func (c Choice) Validate() error {
	errs := required(nil, "value", c.Value, maxChoiceValue)
	errs = required(errs, "text", c.Text, maxChoiceText)
	if strings.TrimSpace(c.Value) != c.Value {
		errs = multierror.Append(errs, errors.New("value has leading or trailing spaces"))
	}
	return errs.ErrorOrNil()
}
