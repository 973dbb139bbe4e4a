package fixture

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/urbanvitaliz/survey/config"
	"github.com/urbanvitaliz/survey/database"
	"github.com/urbanvitaliz/survey/model"
	"github.com/urbanvitaliz/survey/store"
)

func TestDecode(t *testing.T) {
	survey, err := Decode(strings.NewReader(`
name: Quick
question_sets:
  - heading: One
    questions:
      - text: Flooded?
        priority: 3
        precondition: [" b", a, a]
        choices:
          - {value: yes, text: Yes, signals: [flood]}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := survey.QuestionSets[0].Questions[0]
	if q.Priority != 3 || !reflect.DeepEqual(q.Precondition, model.Tags{"a", "b"}) {
		t.Errorf("unexpected question %+v", q)
	}
	if c := q.Choices[0]; c.Value != "yes" || !reflect.DeepEqual(c.Signals, model.Tags{"flood"}) {
		t.Errorf("unexpected choice %+v", c)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "question_sets: []"},
		{"unknown field", "name: x\ncolour: blue"},
		{"not yaml", "name: [unterminated"},
		{"set without heading", "name: x\nquestion_sets:\n  - icon: house"},
		{"question without text", "name: x\nquestion_sets:\n  - heading: h\n    questions:\n      - priority: 1"},
		{"padded choice value", "name: x\nquestion_sets:\n  - heading: h\n    questions:\n      - text: t\n        choices:\n          - {value: \" yes\", text: Yes}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDecodeReportsEveryProblem(t *testing.T) {
	_, err := Decode(strings.NewReader(`
name: Broken
question_sets:
  - heading: ""
    questions:
      - text: Flooded?
        choices:
          - {value: " yes", text: Yes}
          - {value: no}
`))
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{
		"question set 1: heading is required",
		`question set 1 question 1 choice " yes": value has leading or trailing spaces`,
		`question set 1 question 1 choice "no": text is required`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	dsn := config.SQLiteDSN(filepath.Join(t.TempDir(), "test.sqlite"))
	db, err := database.OpenDSN("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	survey, err := LoadFile(ctx, db, filepath.Join("testdata", "diagnostic.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if survey.ID == 0 {
		t.Fatal("expected the survey id to be filled in")
	}

	tree, err := store.New(db).SurveyTree(ctx, survey.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.QuestionSets) != 2 {
		t.Fatalf("expected 2 question sets, got %d", len(tree.QuestionSets))
	}
	site := tree.QuestionSets[0]
	if site.Heading != "Le site" || len(site.Questions) != 2 || len(site.Questions[0].Choices) != 2 {
		t.Errorf("unexpected first set %+v", site)
	}
	if !tree.QuestionSets[1].Questions[0].IsMultiple {
		t.Error("expected a multiple choice question")
	}
}

func TestLoadFileRollsBack(t *testing.T) {
	ctx := context.Background()
	dsn := config.SQLiteDSN(filepath.Join(t.TempDir(), "test.sqlite"))
	db, err := database.OpenDSN("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	path := filepath.Join(t.TempDir(), "dup.yaml")
	writeFile(t, path, `
name: Broken
question_sets:
  - heading: One
    questions:
      - text: Twice the same value
        choices:
          - {value: a, text: A}
          - {value: a, text: Again}
`)

	if _, err := LoadFile(ctx, db, path); err == nil {
		t.Fatal("expected a duplicate choice error")
	}
	surveys, err := store.New(db).ListSurveys(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(surveys) != 0 {
		t.Errorf("expected nothing imported, got %+v", surveys)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
