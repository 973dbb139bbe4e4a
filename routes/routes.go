package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/urbanvitaliz/survey/app"
	"github.com/urbanvitaliz/survey/log"
	"github.com/urbanvitaliz/survey/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.Logger,
		NoColor: true,
	})

	root := chi.NewRouter()
	root.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	if len(app.CORSOrigins) > 0 {
		root.Use(cors.Handler(cors.Options{
			AllowedOrigins: app.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Location"},
			MaxAge:         300,
		}))
	}

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	api.Use(middlewares.Tx(app.DB))

	// filling surveys
	api.Post("/sessions", StartSession(app))
	api.Route(`/sessions/{id:^\d+$}`, func(r chi.Router) {
		r.Get("/", GetSession(app))
		r.Get("/signals", GetSessionSignals(app))
		r.Get("/done", GetSessionDone(app))
		r.Get(`/questions/{qid:^\d+$}`, GetSessionQuestion(app))
		r.Post(`/questions/{qid:^\d+$}/answer`, AnswerQuestion(app))
	})

	// editing surveys
	api.Get("/surveys", ListSurveys(app))
	api.Post("/surveys", CreateSurvey(app))
	api.Get(`/surveys/{id:^\d+$}`, GetSurveyById(app))
	api.Put(`/surveys/{id:^\d+$}`, UpdateSurvey(app))
	api.Delete(`/surveys/{id:^\d+$}`, DeleteSurvey(app))
	api.Get(`/surveys/{id:^\d+$}/sessions`, GetSurveySessions(app))
	api.Post(`/surveys/{id:^\d+$}/question-sets`, CreateQuestionSet(app))

	api.Get(`/question-sets/{id:^\d+$}`, GetQuestionSet(app))
	api.Put(`/question-sets/{id:^\d+$}`, UpdateQuestionSet(app))
	api.Delete(`/question-sets/{id:^\d+$}`, DeleteQuestionSet(app))
	api.Post(`/question-sets/{id:^\d+$}/questions`, CreateQuestion(app))

	api.Get(`/questions/{id:^\d+$}`, GetQuestion(app))
	api.Put(`/questions/{id:^\d+$}`, UpdateQuestion(app))
	api.Delete(`/questions/{id:^\d+$}`, DeleteQuestion(app))
	api.Post(`/questions/{id:^\d+$}/choices`, CreateChoice(app))

	api.Get(`/choices/{id:^\d+$}`, GetChoice(app))
	api.Put(`/choices/{id:^\d+$}`, UpdateChoice(app))
	api.Delete(`/choices/{id:^\d+$}`, DeleteChoice(app))

	return api
}

func urlID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
