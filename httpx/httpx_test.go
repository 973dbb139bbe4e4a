package httpx

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/urbanvitaliz/survey/log"
	"github.com/urbanvitaliz/survey/store"
)

func init() {
	log.SetOutput(io.Discard)
}

func TestResponseBufferFlush(t *testing.T) {
	buf := NewResponseBuffer()
	buf.Header().Set("location", "/next")
	buf.WriteHeader(http.StatusCreated)
	buf.WriteHeader(http.StatusTeapot)
	fmt.Fprint(buf, `{"id":1}`)

	if buf.Status() != http.StatusCreated {
		t.Errorf("Status() = %d, want 201", buf.Status())
	}

	rec := httptest.NewRecorder()
	if err := buf.Flush(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated || rec.Header().Get("location") != "/next" || rec.Body.String() != `{"id":1}` {
		t.Errorf("unexpected flushed response %d %v %q", rec.Code, rec.Header(), rec.Body.String())
	}
}

func TestResponseBufferDefaultStatus(t *testing.T) {
	buf := NewResponseBuffer()
	if buf.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want 200", buf.Status())
	}
	if len(buf.Body()) != 0 {
		t.Errorf("Body() = %q", buf.Body())
	}
}

func TestLogStoreError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Wrap(store.ErrNotFound, "get_session"), http.StatusNotFound},
		{errors.Wrap(store.ErrUniqueViolation, "create_answer"), http.StatusConflict},
		{store.ErrForeignKeyViolation, http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		LogStoreError(rec, "test", 1, tt.err)
		if rec.Code != tt.want {
			t.Errorf("%v: status %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}
