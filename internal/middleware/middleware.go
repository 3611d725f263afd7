package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"storefront/internal/model"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// CORS allows browser clients from the given origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}

// Logging writes one access log line per request. Client errors are logged
// at warn level and server errors at error level.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			var event *zerolog.Event
			switch {
			case rec.status >= http.StatusInternalServerError:
				event = logger.Error()
			case rec.status >= http.StatusBadRequest:
				event = logger.Warn()
			default:
				event = logger.Info()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.written).
				Dur("duration", time.Since(began)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("http request")
		})
	}
}

// Recovery turns a panic into a 500 JSON response. If the handler already
// started the response nothing more is written.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "recovery").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.Error().
					Interface("panic", v).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if rec.wroteHeader {
					return
				}
				writeError(rec, http.StatusInternalServerError, model.ErrorResponse{
					Error: "Internal server error",
					Code:  model.ErrCodeInternalError,
				})
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// statusRecorder remembers the status and body size written through it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.ResponseWriter.Write(b)
	s.written += n
	return n, err
}

func writeError(w http.ResponseWriter, status int, body model.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
