package middlewares

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/urbanvitaliz/survey/httpx"
	"github.com/urbanvitaliz/survey/log"
	"github.com/urbanvitaliz/survey/store"
)

// Tx runs the request in a database transaction. The handler writes into a
// buffer; the transaction is committed when the status is below 400 and
// rolled back otherwise, then the buffered response is sent.
func Tx(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tx, err := db.BeginTxx(r.Context(), nil)
			if err != nil {
				httpx.LogInternalError(w, "db.begin_tx", err)
				return
			}
			defer tx.Rollback()

			buf := httpx.NewResponseBuffer()
			next.ServeHTTP(buf, r.WithContext(store.WithTx(r.Context(), tx)))

			if buf.Status() < http.StatusBadRequest {
				if err := tx.Commit(); err != nil {
					httpx.LogInternalError(w, "db.commit", err)
					return
				}
			}

			if err := buf.Flush(w); err != nil {
				log.Debugf("response.flush: %s", err)
			}
		})
	}
}
