// Package respond renders error responses for huma operations and for the
// plain chi handlers that sit outside huma (404, 405, panics).
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	applog "github.com/janisto/profile-sync/internal/platform/logging"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"

	msgNotFound         = "resource not found"
	msgMethodNotAllowed = "method not allowed"
	msgInternal         = "internal server error"
)

// Detail describes one invalid input location.
type Detail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []Detail `json:"details,omitempty"`
}

func (e *ErrorBody) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *ErrorBody) GetStatus() int {
	return e.Status
}

var installOnce sync.Once

// Install makes huma build every error as an ErrorBody and log it by status class.
func Install() {
	installOnce.Do(func() {
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			return Error(context.Background(), status, msg, detailsFromErrors(errs), errs...)
		}
		huma.NewErrorWithContext = func(hctx huma.Context, status int, msg string, errs ...error) huma.StatusError {
			ctx := context.Background()
			if hctx != nil {
				ctx = hctx.Context()
			}
			return Error(ctx, status, msg, detailsFromErrors(errs), errs...)
		}
	})
}

// Error builds and logs an ErrorBody. An empty msg falls back to the status text.
func Error(ctx context.Context, status int, msg string, details []Detail, errs ...error) *ErrorBody {
	if strings.TrimSpace(msg) == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", status)
		}
	}
	logWithStatus(ctx, status, msg, errors.Join(errs...), details)
	return &ErrorBody{Message: msg, Status: status, Details: details}
}

// Write serializes body as CBOR when the client prefers it, JSON otherwise.
func Write(w http.ResponseWriter, r *http.Request, body *ErrorBody) error {
	var (
		payload []byte
		err     error
		ct      = contentTypeJSON
	)
	if prefersCBOR(r.Header.Get("Accept")) {
		ct = contentTypeCBOR
		payload, err = cbor.Marshal(body)
	} else {
		var sb strings.Builder
		enc := json.NewEncoder(&sb)
		enc.SetEscapeHTML(false)
		err = enc.Encode(body)
		payload = []byte(sb.String())
	}
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(body.Status)
	_, err = w.Write(payload)
	return err
}

// NotFoundHandler renders a 404 ErrorBody.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := Error(r.Context(), http.StatusNotFound, msgNotFound, nil)
		if err := Write(w, r, body); err != nil {
			applog.LogError(r.Context(), "failed to render not found", err)
		}
	}
}

// MethodNotAllowedHandler renders a 405 ErrorBody with an Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		body := Error(r.Context(), http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
		if err := Write(w, r, body); err != nil {
			applog.LogError(r.Context(), "failed to render method not allowed", err)
		}
	}
}

// Recoverer converts panics into 500 responses. http.ErrAbortHandler is re-panicked.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				err = fmt.Errorf("%w\n%s", err, debug.Stack())
				body := Error(r.Context(), http.StatusInternalServerError, msgInternal, nil, err)
				if ww.Status() != 0 {
					return
				}
				if writeErr := Write(ww, r, body); writeErr != nil {
					applog.LogError(r.Context(), "failed to render internal error", writeErr)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// prefersCBOR reports whether accept ranks application/cbor above JSON.
// Wildcards and ties resolve to JSON.
func prefersCBOR(accept string) bool {
	var cborQ, jsonQ float64 = -1, -1
	for part := range strings.SplitSeq(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed < 0 || parsed > 1 {
				continue
			}
			q = parsed
		}
		switch mediaType {
		case contentTypeCBOR:
			cborQ = max(cborQ, q)
		case contentTypeJSON, "application/*", "*/*":
			jsonQ = max(jsonQ, q)
		}
	}
	return cborQ > 0 && cborQ > jsonQ
}

// allowedMethods probes chi's route tree for the methods registered on the path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.Path
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	methods := []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

func detailsFromErrors(errs []error) []Detail {
	details := make([]Detail, 0, len(errs))
	for _, err := range errs {
		if err == nil {
			continue
		}
		d := Detail{Message: err.Error()}
		var detailer huma.ErrorDetailer
		if errors.As(err, &detailer) {
			if ed := detailer.ErrorDetail(); ed != nil {
				d = Detail{Field: ed.Location, Message: ed.Message, Value: ed.Value}
			}
		}
		details = append(details, d)
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func logWithStatus(ctx context.Context, status int, msg string, err error, details []Detail) {
	if ctx == nil {
		ctx = context.Background()
	}
	fields := []zap.Field{zap.Int("status", status), zap.String("message", msg)}
	if len(details) > 0 {
		fields = append(fields, zap.Any("details", details))
	}
	switch {
	case status >= 500:
		applog.LogError(ctx, msg, err, fields...)
	case status >= 400:
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		applog.LogWarn(ctx, msg, fields...)
	default:
		applog.LogInfo(ctx, msg, fields...)
	}
}
