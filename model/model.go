package model

import "time"

type Survey struct {
	ID           int64         `db:"id" json:"id,omitempty"`
	Name         string        `db:"name" json:"name"`
	QuestionSets []QuestionSet `db:"-" json:"question_sets,omitempty"`
}

// QuestionSet groups questions under a common topic.
type QuestionSet struct {
	ID         int64      `db:"id" json:"id,omitempty"`
	SurveyID   int64      `db:"survey_id" json:"survey_id"`
	Heading    string     `db:"heading" json:"heading"`
	Icon       string     `db:"icon" json:"icon"`
	Subheading string     `db:"subheading" json:"subheading"`
	Deleted    bool       `db:"deleted" json:"deleted"`
	Questions  []Question `db:"-" json:"questions,omitempty"`
}

type Question struct {
	ID            int64    `db:"id" json:"id,omitempty"`
	QuestionSetID int64    `db:"question_set_id" json:"question_set_id"`
	Text          string   `db:"text" json:"text"`
	How           string   `db:"how" json:"how"`
	Why           string   `db:"why" json:"why"`
	IsMultiple    bool     `db:"is_multiple" json:"is_multiple"`
	Priority      int      `db:"priority" json:"priority"`
	Deleted       bool     `db:"deleted" json:"deleted"`
	Precondition  Tags     `db:"precondition" json:"precondition"`
	Choices       []Choice `db:"-" json:"choices,omitempty"`
}

type Choice struct {
	ID         int64  `db:"id" json:"id,omitempty"`
	QuestionID int64  `db:"question_id" json:"question_id"`
	Value      string `db:"value" json:"value"`
	Text       string `db:"text" json:"text"`
	Signals    Tags   `db:"signals" json:"signals"`
}

// Session is the resumable run of one project through a survey.
type Session struct {
	ID        int64     `db:"id" json:"id"`
	ProjectID int64     `db:"project_id" json:"project_id"`
	SurveyID  int64     `db:"survey_id" json:"survey_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Answer struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  int64     `db:"session_id" json:"session_id"`
	QuestionID int64     `db:"question_id" json:"question_id"`
	Values     Values    `db:"answer_values" json:"values"`
	Comment    string    `db:"comment" json:"comment"`
	Signals    Tags      `db:"signals" json:"signals"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
