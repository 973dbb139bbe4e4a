package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/urbanvitaliz/survey/app"
	"github.com/urbanvitaliz/survey/httpx"
	"github.com/urbanvitaliz/survey/log"
	"github.com/urbanvitaliz/survey/model"
	"github.com/urbanvitaliz/survey/store"
	"github.com/urbanvitaliz/survey/survey"
)

type startSessionRequest struct {
	ProjectID int64 `json:"project_id"`
	SurveyID  int64 `json:"survey_id"`
}

// StartSession creates the session of a project, or resumes it when the
// project already has one for the same survey.
func StartSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := startSessionRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.ProjectID <= 0 || req.SurveyID <= 0 {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "project_id and survey_id are required")
			return
		}

		st := app.Store(r.Context())

		sess, err := st.SessionByProject(r.Context(), req.ProjectID)
		switch {
		case err == nil:
			if sess.SurveyID != req.SurveyID {
				httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "session.survey_mismatch",
					"project %d already runs survey %d", req.ProjectID, sess.SurveyID)
				return
			}
			render.JSON(w, r, map[string]any{"session": sess})
			return
		case !errors.Is(err, store.ErrNotFound):
			httpx.LogInternalError(w, "db.session_by_project", err)
			return
		}

		_, err = st.GetSurvey(r.Context(), req.SurveyID)
		if err != nil {
			httpx.LogStoreError(w, "db.get_survey", req.SurveyID, err)
			return
		}

		sess = model.Session{ProjectID: req.ProjectID, SurveyID: req.SurveyID}
		err = st.CreateSession(r.Context(), &sess)
		if err != nil {
			httpx.LogStoreError(w, "db.create_session", req.ProjectID, err)
			return
		}

		w.Header().Set("location", fmt.Sprintf("/api/sessions/%d", sess.ID))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{"session": sess})
	}
}

func loadSession(app app.App, w http.ResponseWriter, r *http.Request) (sess model.Session, ok bool) {
	sessionId, err := urlID(r, "id")
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return
	}

	sess, err = app.Store(r.Context()).GetSession(r.Context(), sessionId)
	if err != nil {
		httpx.LogStoreError(w, "db.get_session", sessionId, err)
		return
	}
	return sess, true
}

// loadQuestion reads a question with its choices. Questions of another
// survey are reported as not found.
func loadQuestion(app app.App, w http.ResponseWriter, r *http.Request, sess model.Session, questionId int64) (q model.Question, ok bool) {
	st := app.Store(r.Context())

	surveyId, err := st.SurveyOfQuestion(r.Context(), questionId)
	if err != nil {
		httpx.LogStoreError(w, "db.survey_of_question", questionId, err)
		return
	}
	if surveyId != sess.SurveyID {
		httpx.LogNotFound(w, "session.question", questionId)
		return
	}

	q, err = st.GetQuestion(r.Context(), questionId)
	if err != nil {
		httpx.LogStoreError(w, "db.get_question", questionId, err)
		return
	}
	return q, true
}

// GetSession tells which question to display. The optional "last" query
// parameter is the question displayed before; navigation resumes after it.
func GetSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(app, w, r)
		if !ok {
			return
		}

		var last *model.Question
		if param := r.URL.Query().Get("last"); param != "" {
			lastId, err := strconv.ParseInt(param, 10, 64)
			if err != nil {
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.last")
				return
			}
			q, ok := loadQuestion(app, w, r, sess, lastId)
			if !ok {
				return
			}
			last = &q
		}

		nav := app.Navigator(r.Context())

		question, err := nav.NextQuestion(r.Context(), sess, last)
		if err != nil {
			httpx.LogInternalError(w, "survey.next_question", err)
			return
		}
		first, err := nav.FirstQuestion(r.Context(), sess)
		if err != nil {
			httpx.LogInternalError(w, "survey.first_question", err)
			return
		}
		progress, err := nav.Progress(r.Context(), sess)
		if err != nil {
			httpx.LogInternalError(w, "survey.progress", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"session":  sess,
			"first":    questionRef(first),
			"question": question,
			"progress": progress,
			"done":     question == nil,
		})
	}
}

func questionRef(q *model.Question) *int64 {
	if q == nil {
		return nil
	}
	id := q.ID
	return &id
}

func GetSessionQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(app, w, r)
		if !ok {
			return
		}
		questionId, err := urlID(r, "qid")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.qid")
			return
		}
		q, ok := loadQuestion(app, w, r, sess, questionId)
		if !ok {
			return
		}

		var answer *model.Answer
		a, err := app.Store(r.Context()).GetAnswer(r.Context(), sess.ID, q.ID)
		switch {
		case err == nil:
			answer = &a
		case !errors.Is(err, store.ErrNotFound):
			httpx.LogInternalError(w, "db.get_answer", err)
			return
		}

		nav := app.Navigator(r.Context())

		eligible, err := nav.CheckPrecondition(r.Context(), &q, sess)
		if err != nil {
			httpx.LogInternalError(w, "survey.check_precondition", err)
			return
		}
		previous, err := nav.PreviousQuestion(r.Context(), sess, &q)
		if err != nil {
			httpx.LogInternalError(w, "survey.previous_question", err)
			return
		}
		next, err := nav.NextQuestion(r.Context(), sess, &q)
		if err != nil {
			httpx.LogInternalError(w, "survey.next_question", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"question": q,
			"answer":   answer,
			"eligible": eligible,
			"previous": questionRef(previous),
			"next":     questionRef(next),
		})
	}
}

type answerRequest struct {
	Values  []string `json:"values"`
	Comment string   `json:"comment"`
}

// AnswerQuestion records the answer to a question and points to the next
// question to display. A question is answered once: a second answer is
// rejected with 409 Conflict.
func AnswerQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(app, w, r)
		if !ok {
			return
		}
		questionId, err := urlID(r, "qid")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.qid")
			return
		}

		req := answerRequest{}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		q, ok := loadQuestion(app, w, r, sess, questionId)
		if !ok {
			return
		}

		nav := app.Navigator(r.Context())

		eligible, err := nav.CheckPrecondition(r.Context(), &q, sess)
		if err != nil {
			httpx.LogInternalError(w, "survey.check_precondition", err)
			return
		}
		if !eligible {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "answer.precondition",
				"question %d requires %v", q.ID, q.Precondition)
			return
		}

		answer, err := survey.NewAnswer(sess, &q, req.Values, req.Comment)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "answer.validate", "%s", err)
			return
		}

		err = app.Store(r.Context()).CreateAnswer(r.Context(), &answer)
		if errors.Is(err, store.ErrUniqueViolation) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "answer.duplicate",
				"question %d already answered", q.ID)
			return
		}
		if err != nil {
			httpx.LogStoreError(w, "db.create_answer", q.ID, err)
			return
		}

		next, err := nav.NextQuestion(r.Context(), sess, &q)
		if err != nil {
			httpx.LogInternalError(w, "survey.next_question", err)
			return
		}

		if next != nil {
			w.Header().Set("location", fmt.Sprintf("/api/sessions/%d/questions/%d", sess.ID, next.ID))
		} else {
			w.Header().Set("location", fmt.Sprintf("/api/sessions/%d/done", sess.ID))
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"answer": answer,
			"next":   questionRef(next),
			"done":   next == nil,
		})
	}
}

func GetSessionDone(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(app, w, r)
		if !ok {
			return
		}

		answers, err := app.Store(r.Context()).Answers(r.Context(), sess.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.answers", err)
			return
		}
		progress, err := app.Navigator(r.Context()).Progress(r.Context(), sess)
		if err != nil {
			httpx.LogInternalError(w, "survey.progress", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"session":  sess,
			"answers":  answers,
			"signals":  survey.Signals(answers),
			"progress": progress,
		})
	}
}

func GetSessionSignals(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(app, w, r)
		if !ok {
			return
		}

		signals, err := app.Navigator(r.Context()).Signals(r.Context(), sess)
		if err != nil {
			httpx.LogInternalError(w, "survey.signals", err)
			return
		}

		render.JSON(w, r, map[string]any{"signals": signals})
	}
}
