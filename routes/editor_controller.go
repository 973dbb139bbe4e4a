package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/urbanvitaliz/survey/app"
	"github.com/urbanvitaliz/survey/httpx"
	"github.com/urbanvitaliz/survey/log"
	"github.com/urbanvitaliz/survey/model"
	"github.com/urbanvitaliz/survey/survey"
)

func created(w http.ResponseWriter, r *http.Request, location string, id int64) {
	w.Header().Set("location", location)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"id": id,
	})
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.Store(r.Context()).ListSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.list_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = survey.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		err = app.Store(r.Context()).CreateSurvey(r.Context(), &survey)
		if err != nil {
			httpx.LogStoreError(w, "db.create_survey", survey.Name, err)
			return
		}

		created(w, r, fmt.Sprintf("/api/surveys/%d", survey.ID), survey.ID)
	}
}

// GetSurveyById returns the whole survey: question sets, questions and choices.
func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := app.Store(r.Context()).SurveyTree(r.Context(), surveyId)
		if err != nil {
			httpx.LogStoreError(w, "db.survey_tree", surveyId, err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey := model.Survey{}
		err = render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = survey.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		survey.ID = surveyId
		err = app.Store(r.Context()).UpdateSurvey(r.Context(), survey)
		if err != nil {
			httpx.LogStoreError(w, "db.update_survey", surveyId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteSurvey removes the survey for good, sessions and answers included.
func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.Store(r.Context()).DeleteSurvey(r.Context(), surveyId)
		if err != nil {
			httpx.LogStoreError(w, "db.delete_survey", surveyId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// GetSurveySessions lists the sessions run on a survey with their progress.
func GetSurveySessions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		st := app.Store(r.Context())
		if _, err = st.GetSurvey(r.Context(), surveyId); err != nil {
			httpx.LogStoreError(w, "db.get_survey", surveyId, err)
			return
		}

		sessions, err := st.Sessions(r.Context(), surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.sessions", err)
			return
		}

		type sessionSummary struct {
			model.Session
			Progress survey.Progress `json:"progress"`
		}
		nav := app.Navigator(r.Context())
		summaries := make([]sessionSummary, len(sessions))
		for i, sess := range sessions {
			progress, err := nav.Progress(r.Context(), sess)
			if err != nil {
				httpx.LogInternalError(w, "survey.progress", err)
				return
			}
			summaries[i] = sessionSummary{sess, progress}
		}

		render.JSON(w, r, map[string]any{
			"sessions": summaries,
		})
	}
}

func CreateQuestionSet(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		set := model.QuestionSet{}
		err = render.DecodeJSON(r.Body, &set)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = set.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		st := app.Store(r.Context())
		if _, err = st.GetSurvey(r.Context(), surveyId); err != nil {
			httpx.LogStoreError(w, "db.get_survey", surveyId, err)
			return
		}

		set.SurveyID = surveyId
		err = st.CreateQuestionSet(r.Context(), &set)
		if err != nil {
			httpx.LogStoreError(w, "db.create_question_set", surveyId, err)
			return
		}

		created(w, r, fmt.Sprintf("/api/question-sets/%d", set.ID), set.ID)
	}
}

func GetQuestionSet(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		set, err := app.Store(r.Context()).GetQuestionSet(r.Context(), setId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_question_set", setId, err)
			return
		}

		render.JSON(w, r, struct {
			model.QuestionSet
			First *int64 `json:"first"`
		}{set, questionRef(survey.FirstQuestionOf(set))})
	}
}

func UpdateQuestionSet(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		set := model.QuestionSet{}
		err = render.DecodeJSON(r.Body, &set)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = set.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		set.ID = setId
		err = app.Store(r.Context()).UpdateQuestionSet(r.Context(), set)
		if err != nil {
			httpx.LogStoreError(w, "db.update_question_set", setId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteQuestionSet(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.Store(r.Context()).DeleteQuestionSet(r.Context(), setId)
		if err != nil {
			httpx.LogStoreError(w, "db.delete_question_set", setId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		q := model.Question{}
		err = render.DecodeJSON(r.Body, &q)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = q.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		st := app.Store(r.Context())
		if _, err = st.GetQuestionSet(r.Context(), setId); err != nil {
			httpx.LogStoreError(w, "db.get_question_set", setId, err)
			return
		}

		q.QuestionSetID = setId
		err = st.CreateQuestion(r.Context(), &q)
		if err != nil {
			httpx.LogStoreError(w, "db.create_question", setId, err)
			return
		}

		// choices may be given along with the question
		for _, c := range q.Choices {
			c.QuestionID = q.ID
			if err = c.Validate(); err != nil {
				httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
				return
			}
			err = st.CreateChoice(r.Context(), &c)
			if err != nil {
				httpx.LogStoreError(w, "db.create_question.choices", c.Value, err)
				return
			}
		}

		created(w, r, fmt.Sprintf("/api/questions/%d", q.ID), q.ID)
	}
}

func GetQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		q, err := app.Store(r.Context()).GetQuestion(r.Context(), questionId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_question", questionId, err)
			return
		}

		render.JSON(w, r, q)
	}
}

// UpdateQuestion replaces the question's fields; its choices are edited
// through their own endpoints.
func UpdateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		q := model.Question{}
		err = render.DecodeJSON(r.Body, &q)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = q.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		q.ID = questionId
		err = app.Store(r.Context()).UpdateQuestion(r.Context(), q)
		if err != nil {
			httpx.LogStoreError(w, "db.update_question", questionId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.Store(r.Context()).DeleteQuestion(r.Context(), questionId)
		if err != nil {
			httpx.LogStoreError(w, "db.delete_question", questionId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateChoice(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		c := model.Choice{}
		err = render.DecodeJSON(r.Body, &c)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = c.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		st := app.Store(r.Context())
		if _, err = st.GetQuestion(r.Context(), questionId); err != nil {
			httpx.LogStoreError(w, "db.get_question", questionId, err)
			return
		}

		c.QuestionID = questionId
		err = st.CreateChoice(r.Context(), &c)
		if err != nil {
			httpx.LogStoreError(w, "db.create_choice", c.Value, err)
			return
		}

		created(w, r, fmt.Sprintf("/api/questions/%d", questionId), c.ID)
	}
}

func GetChoice(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		choiceId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		c, err := app.Store(r.Context()).GetChoice(r.Context(), choiceId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_choice", choiceId, err)
			return
		}

		render.JSON(w, r, c)
	}
}

func UpdateChoice(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		choiceId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		c := model.Choice{}
		err = render.DecodeJSON(r.Body, &c)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = c.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		c.ID = choiceId
		err = app.Store(r.Context()).UpdateChoice(r.Context(), c)
		if err != nil {
			httpx.LogStoreError(w, "db.update_choice", choiceId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteChoice(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		choiceId, err := urlID(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = app.Store(r.Context()).DeleteChoice(r.Context(), choiceId)
		if err != nil {
			httpx.LogStoreError(w, "db.delete_choice", choiceId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
