package store

import (
	"context"

	"github.com/urbanvitaliz/survey/model"
)

const (
	questionSetColumns = `id, survey_id, heading, icon, subheading, deleted`
	questionColumns    = `id, question_set_id, text, how, why, is_multiple, priority, deleted, precondition`
	choiceColumns      = `id, question_id, value, text, signals`
)

func (s *Store) CreateSurvey(ctx context.Context, survey *model.Survey) (err error) {
	survey.ID, err = s.insert(ctx, "create_survey", `
		INSERT INTO survey (name) VALUES (?)
		RETURNING id`,
		survey.Name,
	)
	return
}

func (s *Store) GetSurvey(ctx context.Context, id int64) (survey model.Survey, err error) {
	err = s.get(ctx, "get_survey", &survey, `SELECT id, name FROM survey WHERE id = ?`, id)
	return
}

func (s *Store) ListSurveys(ctx context.Context) (surveys []model.Survey, err error) {
	surveys = []model.Survey{}
	err = s.selectAll(ctx, "list_surveys", &surveys, `SELECT id, name FROM survey ORDER BY id`)
	return
}

func (s *Store) UpdateSurvey(ctx context.Context, survey model.Survey) error {
	return s.exec(ctx, "update_survey", `UPDATE survey SET name = ? WHERE id = ?`, survey.Name, survey.ID)
}

// DeleteSurvey removes the survey along with its content and sessions.
func (s *Store) DeleteSurvey(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_survey", `DELETE FROM survey WHERE id = ?`, id)
}

// SurveyTree returns the survey with its question sets, questions and
// choices, soft-deleted entries included.
func (s *Store) SurveyTree(ctx context.Context, id int64) (survey model.Survey, err error) {
	survey, err = s.GetSurvey(ctx, id)
	if err != nil {
		return
	}
	survey.QuestionSets, err = s.QuestionSets(ctx, id)
	if err != nil {
		return
	}

	var choices []model.Choice
	err = s.selectAll(ctx, "survey_tree.choices", &choices, `
		SELECT c.id, c.question_id, c.value, c.text, c.signals
		FROM choice c
		INNER JOIN question q ON (q.id = c.question_id)
		INNER JOIN question_set qs ON (qs.id = q.question_set_id)
		WHERE qs.survey_id = ?
		ORDER BY c.id`,
		id,
	)
	if err != nil {
		return
	}

	byQuestion := map[int64][]model.Choice{}
	for _, c := range choices {
		byQuestion[c.QuestionID] = append(byQuestion[c.QuestionID], c)
	}
	for i := range survey.QuestionSets {
		questions := survey.QuestionSets[i].Questions
		for j := range questions {
			questions[j].Choices = byQuestion[questions[j].ID]
		}
	}
	return
}

// QuestionSets returns the question sets of a survey, each with its
// questions, in creation order. Choices are not loaded.
func (s *Store) QuestionSets(ctx context.Context, surveyID int64) (sets []model.QuestionSet, err error) {
	err = s.selectAll(ctx, "question_sets", &sets, `
		SELECT `+questionSetColumns+`
		FROM question_set
		WHERE survey_id = ?
		ORDER BY id`,
		surveyID,
	)
	if err != nil {
		return
	}

	var questions []model.Question
	err = s.selectAll(ctx, "question_sets.questions", &questions, `
		SELECT q.id, q.question_set_id, q.text, q.how, q.why, q.is_multiple, q.priority, q.deleted, q.precondition
		FROM question q
		INNER JOIN question_set qs ON (qs.id = q.question_set_id)
		WHERE qs.survey_id = ?
		ORDER BY q.id`,
		surveyID,
	)
	if err != nil {
		return
	}

	index := make(map[int64]int, len(sets))
	for i, set := range sets {
		index[set.ID] = i
	}
	for _, q := range questions {
		i := index[q.QuestionSetID]
		sets[i].Questions = append(sets[i].Questions, q)
	}
	return
}

func (s *Store) CreateQuestionSet(ctx context.Context, set *model.QuestionSet) (err error) {
	set.ID, err = s.insert(ctx, "create_question_set", `
		INSERT INTO question_set (survey_id, heading, icon, subheading)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		set.SurveyID, set.Heading, set.Icon, set.Subheading,
	)
	return
}

// GetQuestionSet returns a question set with its questions.
func (s *Store) GetQuestionSet(ctx context.Context, id int64) (set model.QuestionSet, err error) {
	err = s.get(ctx, "get_question_set", &set, `
		SELECT `+questionSetColumns+`
		FROM question_set
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return
	}
	err = s.selectAll(ctx, "get_question_set.questions", &set.Questions, `
		SELECT `+questionColumns+`
		FROM question
		WHERE question_set_id = ?
		ORDER BY id`,
		id,
	)
	return
}

func (s *Store) UpdateQuestionSet(ctx context.Context, set model.QuestionSet) error {
	return s.exec(ctx, "update_question_set", `
		UPDATE question_set
		SET heading = ?, icon = ?, subheading = ?
		WHERE id = ?`,
		set.Heading, set.Icon, set.Subheading, set.ID,
	)
}

// DeleteQuestionSet marks the set as deleted; its rows are kept.
func (s *Store) DeleteQuestionSet(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_question_set", `
		UPDATE question_set SET deleted = ? WHERE id = ?`,
		true, id,
	)
}

func (s *Store) CreateQuestion(ctx context.Context, q *model.Question) (err error) {
	q.ID, err = s.insert(ctx, "create_question", `
		INSERT INTO question (question_set_id, text, how, why, is_multiple, priority, precondition)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		q.QuestionSetID, q.Text, q.How, q.Why, q.IsMultiple, q.Priority, model.NewTags(q.Precondition...),
	)
	return
}

// GetQuestion returns a question with its choices.
func (s *Store) GetQuestion(ctx context.Context, id int64) (q model.Question, err error) {
	err = s.get(ctx, "get_question", &q, `
		SELECT `+questionColumns+`
		FROM question
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return
	}
	q.Choices, err = s.Choices(ctx, id)
	return
}

// SurveyOfQuestion returns the id of the survey the question belongs to.
func (s *Store) SurveyOfQuestion(ctx context.Context, questionID int64) (surveyID int64, err error) {
	err = s.get(ctx, "survey_of_question", &surveyID, `
		SELECT qs.survey_id
		FROM question q
		INNER JOIN question_set qs ON (qs.id = q.question_set_id)
		WHERE q.id = ?`,
		questionID,
	)
	return
}

func (s *Store) UpdateQuestion(ctx context.Context, q model.Question) error {
	return s.exec(ctx, "update_question", `
		UPDATE question
		SET text = ?, how = ?, why = ?, is_multiple = ?, priority = ?, precondition = ?
		WHERE id = ?`,
		q.Text, q.How, q.Why, q.IsMultiple, q.Priority, model.NewTags(q.Precondition...), q.ID,
	)
}

// DeleteQuestion marks the question as deleted; answers referencing it stay.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_question", `
		UPDATE question SET deleted = ? WHERE id = ?`,
		true, id,
	)
}

func (s *Store) CreateChoice(ctx context.Context, c *model.Choice) (err error) {
	c.ID, err = s.insert(ctx, "create_choice", `
		INSERT INTO choice (question_id, value, text, signals)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		c.QuestionID, c.Value, c.Text, model.NewTags(c.Signals...),
	)
	return
}

func (s *Store) GetChoice(ctx context.Context, id int64) (c model.Choice, err error) {
	err = s.get(ctx, "get_choice", &c, `SELECT `+choiceColumns+` FROM choice WHERE id = ?`, id)
	return
}

func (s *Store) Choices(ctx context.Context, questionID int64) (choices []model.Choice, err error) {
	choices = []model.Choice{}
	err = s.selectAll(ctx, "choices", &choices, `
		SELECT `+choiceColumns+`
		FROM choice
		WHERE question_id = ?
		ORDER BY id`,
		questionID,
	)
	return
}

func (s *Store) UpdateChoice(ctx context.Context, c model.Choice) error {
	return s.exec(ctx, "update_choice", `
		UPDATE choice
		SET value = ?, text = ?, signals = ?
		WHERE id = ?`,
		c.Value, c.Text, model.NewTags(c.Signals...), c.ID,
	)
}

func (s *Store) DeleteChoice(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete_choice", `DELETE FROM choice WHERE id = ?`, id)
}
