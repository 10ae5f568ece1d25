package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/proxyangel/load-balancer/pkg/logger"
)

// Recover converts a panic in next into a 500 response so one failing
// request never takes the listener down. http.ErrAbortHandler is re-raised.
func Recover(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			err = errors.WithStack(err)

			log.Error("Recovered from panic",
				slog.String("method", r.Method),
				slog.String("target", requestTarget(r)),
				logger.Err(err))
			writeError(w, err)
		}()

		next.ServeHTTP(w, r)
	})
}
