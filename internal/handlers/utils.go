package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/auth"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the error payload written for every failed request.
type ErrorResponse struct {
	Message string      `json:"message"`
	Data    ErrorDetail `json:"data"`
}

type ErrorDetail struct {
	Timestamp time.Time         `json:"timestamp"`
	Error     string            `json:"error"`
	Details   string            `json:"details"`
	Status    int               `json:"status"`
	Path      string            `json:"path"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// MessageResponse acknowledges requests that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeError renders err as an ErrorResponse. Internal causes are logged but
// never returned to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("unexpected error", err)
	}

	status := appErr.Kind.HTTPStatus()
	message := appErr.Message
	details := appErr.Message
	if appErr.Kind == apperr.KindInternal {
		log.Printf("request %s %s failed [%s]: %v", r.Method, r.URL.Path, middleware.GetReqID(r.Context()), err)
		message = "internal server error"
		details = ""
	}

	writeJSON(w, status, ErrorResponse{
		Message: message,
		Data: ErrorDetail{
			Timestamp: time.Now().UTC(),
			Error:     http.StatusText(status),
			Details:   details,
			Status:    status,
			Path:      r.URL.Path,
			Fields:    appErr.Fields,
		},
	})
}

var (
	validate     = newValidator()
	mobileNumber = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobileNumber.MatchString(fl.Field().String())
	})
	return v
}

// decodeJSON reads a JSON body into dst and validates its struct tags.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fieldMessage(fe)
			}
			return apperr.Invalid("validation failed", fields)
		}
		return apperr.Wrap(apperr.KindBadRequest, "invalid request body", err)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "mobile":
		return "must be a 10 digit mobile number starting with 6-9"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// identity returns the caller set by Authenticate.
func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, apperr.Unauthorized("authentication required")
	}
	return id, nil
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
