package store

import (
	"context"
	"time"

	"github.com/urbanvitaliz/survey/model"
)

const (
	sessionColumns = `id, project_id, survey_id, created_at`
	answerColumns  = `id, session_id, question_id, answer_values, comment, signals, created_at`
)

// CreateSession starts the session of a project. A project has at most one
// session: a second one fails with ErrUniqueViolation.
func (s *Store) CreateSession(ctx context.Context, sess *model.Session) (err error) {
	sess.CreatedAt = time.Now().UTC()
	sess.ID, err = s.insert(ctx, "create_session", `
		INSERT INTO session (project_id, survey_id, created_at)
		VALUES (?, ?, ?)
		RETURNING id`,
		sess.ProjectID, sess.SurveyID, sess.CreatedAt,
	)
	return
}

func (s *Store) GetSession(ctx context.Context, id int64) (sess model.Session, err error) {
	err = s.get(ctx, "get_session", &sess, `SELECT `+sessionColumns+` FROM session WHERE id = ?`, id)
	return
}

func (s *Store) SessionByProject(ctx context.Context, projectID int64) (sess model.Session, err error) {
	err = s.get(ctx, "session_by_project", &sess, `
		SELECT `+sessionColumns+`
		FROM session
		WHERE project_id = ?`,
		projectID,
	)
	return
}

// Sessions lists the sessions run on a survey, oldest first.
func (s *Store) Sessions(ctx context.Context, surveyID int64) (sessions []model.Session, err error) {
	sessions = []model.Session{}
	err = s.selectAll(ctx, "sessions", &sessions, `
		SELECT `+sessionColumns+`
		FROM session
		WHERE survey_id = ?
		ORDER BY id`,
		surveyID,
	)
	return
}

// CreateAnswer records an answer. Answering the same question twice in a
// session fails with ErrUniqueViolation and leaves the first answer intact.
func (s *Store) CreateAnswer(ctx context.Context, a *model.Answer) (err error) {
	a.CreatedAt = time.Now().UTC()
	a.ID, err = s.insert(ctx, "create_answer", `
		INSERT INTO answer (session_id, question_id, answer_values, comment, signals, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		a.SessionID, a.QuestionID, a.Values, a.Comment, model.NewTags(a.Signals...), a.CreatedAt,
	)
	return
}

// Answers returns the answers of a session in creation order.
func (s *Store) Answers(ctx context.Context, sessionID int64) (answers []model.Answer, err error) {
	answers = []model.Answer{}
	err = s.selectAll(ctx, "answers", &answers, `
		SELECT `+answerColumns+`
		FROM answer
		WHERE session_id = ?
		ORDER BY id`,
		sessionID,
	)
	return
}

func (s *Store) GetAnswer(ctx context.Context, sessionID, questionID int64) (a model.Answer, err error) {
	err = s.get(ctx, "get_answer", &a, `
		SELECT `+answerColumns+`
		FROM answer
		WHERE session_id = ?
			AND question_id = ?`,
		sessionID, questionID,
	)
	return
}
