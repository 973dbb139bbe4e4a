package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/urbanvitaliz/survey/config"
	"github.com/urbanvitaliz/survey/database"
	"github.com/urbanvitaliz/survey/model"
	"github.com/urbanvitaliz/survey/survey"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := config.SQLiteDSN(filepath.Join(t.TempDir(), "test.sqlite"))
	db, err := database.OpenDSN("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	survey model.Survey
	set    model.QuestionSet
	q1, q2 model.Question
}

// seed creates Q1 (priority 5, choices flood/drought) and Q2 (priority 1,
// requires flood) in a single question set.
func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{survey: model.Survey{Name: "diagnostic"}}
	must(t, s.CreateSurvey(ctx, &f.survey))

	f.set = model.QuestionSet{SurveyID: f.survey.ID, Heading: "Site", Icon: "house"}
	must(t, s.CreateQuestionSet(ctx, &f.set))

	f.q1 = model.Question{QuestionSetID: f.set.ID, Text: "Is the site flooded?", Priority: 5}
	must(t, s.CreateQuestion(ctx, &f.q1))
	f.q2 = model.Question{QuestionSetID: f.set.ID, Text: "How often?", Priority: 1, Precondition: model.NewTags("flood")}
	must(t, s.CreateQuestion(ctx, &f.q2))

	for _, c := range []model.Choice{
		{QuestionID: f.q1.ID, Value: "yes", Text: "Yes", Signals: model.NewTags("flood")},
		{QuestionID: f.q1.ID, Value: "no", Text: "No", Signals: model.NewTags("drought")},
	} {
		must(t, s.CreateChoice(ctx, &c))
	}

	var err error
	f.q1, err = s.GetQuestion(ctx, f.q1.ID)
	must(t, err)
	return f
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSurveyContent(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	f := seed(t, s)

	if len(f.q1.Choices) != 2 || f.q1.Choices[0].Value != "yes" {
		t.Fatalf("unexpected choices %+v", f.q1.Choices)
	}
	if !reflect.DeepEqual(f.q1.Choices[0].Signals, model.Tags{"flood"}) {
		t.Errorf("choice signals = %v", f.q1.Choices[0].Signals)
	}

	sets, err := s.QuestionSets(ctx, f.survey.ID)
	must(t, err)
	if len(sets) != 1 || len(sets[0].Questions) != 2 {
		t.Fatalf("unexpected question sets %+v", sets)
	}
	if !reflect.DeepEqual(sets[0].Questions[1].Precondition, model.Tags{"flood"}) {
		t.Errorf("precondition = %v", sets[0].Questions[1].Precondition)
	}

	tree, err := s.SurveyTree(ctx, f.survey.ID)
	must(t, err)
	if tree.Name != "diagnostic" || len(tree.QuestionSets[0].Questions[0].Choices) != 2 {
		t.Errorf("unexpected tree %+v", tree)
	}

	surveys, err := s.ListSurveys(ctx)
	must(t, err)
	if len(surveys) != 1 {
		t.Errorf("expected 1 survey, got %d", len(surveys))
	}

	surveyID, err := s.SurveyOfQuestion(ctx, f.q2.ID)
	must(t, err)
	if surveyID != f.survey.ID {
		t.Errorf("SurveyOfQuestion() = %d", surveyID)
	}
}

func TestChoiceValueIsUniquePerQuestion(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	f := seed(t, s)

	dup := model.Choice{QuestionID: f.q1.ID, Value: "yes", Text: "Again"}
	if err := s.CreateChoice(ctx, &dup); !errors.Is(err, ErrUniqueViolation) {
		t.Errorf("expected ErrUniqueViolation, got %v", err)
	}

	other := model.Choice{QuestionID: f.q2.ID, Value: "yes", Text: "Yes"}
	must(t, s.CreateChoice(ctx, &other))
}

func TestUpdateAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	f := seed(t, s)

	f.q2.Text = "How often does it flood?"
	f.q2.Precondition = model.NewTags("flood", "river")
	must(t, s.UpdateQuestion(ctx, f.q2))
	must(t, s.DeleteQuestion(ctx, f.q2.ID))

	q, err := s.GetQuestion(ctx, f.q2.ID)
	must(t, err)
	if q.Text != "How often does it flood?" || !q.Deleted || len(q.Precondition) != 2 {
		t.Errorf("unexpected question %+v", q)
	}

	must(t, s.DeleteQuestionSet(ctx, f.set.ID))
	set, err := s.GetQuestionSet(ctx, f.set.ID)
	must(t, err)
	if !set.Deleted || len(set.Questions) != 2 {
		t.Errorf("soft-deleted set must keep its questions, got %+v", set)
	}

	c := f.q1.Choices[1]
	must(t, s.DeleteChoice(ctx, c.ID))
	if _, err := s.GetChoice(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.UpdateChoice(ctx, model.Choice{ID: 999, Value: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestForeignKeys(t *testing.T) {
	s := New(openTestDB(t))

	set := model.QuestionSet{SurveyID: 42, Heading: "orphan"}
	if err := s.CreateQuestionSet(context.Background(), &set); !errors.Is(err, ErrForeignKeyViolation) {
		t.Errorf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestSessionPerProject(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	f := seed(t, s)

	sess := model.Session{ProjectID: 12, SurveyID: f.survey.ID}
	must(t, s.CreateSession(ctx, &sess))

	again := model.Session{ProjectID: 12, SurveyID: f.survey.ID}
	if err := s.CreateSession(ctx, &again); !errors.Is(err, ErrUniqueViolation) {
		t.Errorf("expected ErrUniqueViolation, got %v", err)
	}

	found, err := s.SessionByProject(ctx, 12)
	must(t, err)
	if found.ID != sess.ID || found.CreatedAt.IsZero() {
		t.Errorf("unexpected session %+v", found)
	}

	if _, err := s.GetSession(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnswerOncePerQuestion(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	f := seed(t, s)

	sess := model.Session{ProjectID: 1, SurveyID: f.survey.ID}
	must(t, s.CreateSession(ctx, &sess))

	first, err := survey.NewAnswer(sess, &f.q1, []string{"yes"}, "")
	must(t, err)
	must(t, s.CreateAnswer(ctx, &first))

	second, err := survey.NewAnswer(sess, &f.q1, []string{"no"}, "changed my mind")
	must(t, err)
	if err := s.CreateAnswer(ctx, &second); !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	answers, err := s.Answers(ctx, sess.ID)
	must(t, err)
	if len(answers) != 1 {
		t.Fatalf("expected a single answer, got %d", len(answers))
	}
	if !reflect.DeepEqual(answers[0].Values, model.Values{"yes"}) || !reflect.DeepEqual(answers[0].Signals, model.Tags{"flood"}) {
		t.Errorf("unexpected answer %+v", answers[0])
	}

	got, err := s.GetAnswer(ctx, sess.ID, f.q1.ID)
	must(t, err)
	if got.ID != first.ID {
		t.Errorf("GetAnswer() = %+v", got)
	}
}

func TestNavigatorOnStore(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	f := seed(t, s)
	nav := survey.NewNavigator(s, survey.ModeContinuous)

	sess := model.Session{ProjectID: 1, SurveyID: f.survey.ID}
	must(t, s.CreateSession(ctx, &sess))

	q, err := nav.NextQuestion(ctx, sess, nil)
	must(t, err)
	if q == nil || q.ID != f.q1.ID {
		t.Fatalf("expected Q1, got %+v", q)
	}

	a, err := survey.NewAnswer(sess, &f.q1, []string{"yes"}, "")
	must(t, err)
	must(t, s.CreateAnswer(ctx, &a))

	q, err = nav.NextQuestion(ctx, sess, &f.q1)
	must(t, err)
	if q == nil || q.ID != f.q2.ID {
		t.Fatalf("expected Q2, got %+v", q)
	}
}

func TestInTx(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	boom := errors.New("boom")
	err := InTx(ctx, db, func(s *Store) error {
		must(t, s.CreateSurvey(ctx, &model.Survey{Name: "rolled back"}))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	must(t, InTx(ctx, db, func(s *Store) error {
		return s.CreateSurvey(ctx, &model.Survey{Name: "kept"})
	}))

	surveys, err := New(db).ListSurveys(ctx)
	must(t, err)
	if len(surveys) != 1 || surveys[0].Name != "kept" {
		t.Errorf("unexpected surveys %+v", surveys)
	}
}

func TestFromContext(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if s := FromContext(ctx, db); s.db != db {
		t.Error("expected the db handle without a transaction")
	}

	tx, err := db.Beginx()
	must(t, err)
	defer tx.Rollback()
	if s := FromContext(WithTx(ctx, tx), db); s.db != tx {
		t.Error("expected the transaction")
	}
}

func TestDeleteSurveyCascades(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	f := seed(t, s)

	must(t, s.UpdateSurvey(ctx, model.Survey{ID: f.survey.ID, Name: "renamed"}))
	got, err := s.GetSurvey(ctx, f.survey.ID)
	must(t, err)
	if got.Name != "renamed" {
		t.Errorf("name = %q", got.Name)
	}

	sess := model.Session{ProjectID: 1, SurveyID: f.survey.ID}
	must(t, s.CreateSession(ctx, &sess))
	sessions, err := s.Sessions(ctx, f.survey.ID)
	must(t, err)
	if len(sessions) != 1 || sessions[0].ID != sess.ID {
		t.Fatalf("unexpected sessions %+v", sessions)
	}

	must(t, s.DeleteSurvey(ctx, f.survey.ID))
	if _, err := s.GetSession(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the session to be deleted, got %v", err)
	}
	if _, err := s.GetQuestion(ctx, f.q1.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the question to be deleted, got %v", err)
	}
	if err := s.DeleteSurvey(ctx, f.survey.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
