package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"kaamgarau/internal/analytics"
	"kaamgarau/internal/core"
	"kaamgarau/internal/log"
	"kaamgarau/internal/services"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string       `json:"error"`
	Details []fieldError `json:"details,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// errBadRequest marks malformed input such as unparsable JSON or query
// parameters.
var errBadRequest = errors.New("bad request")

var unprocessable = []error{
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidBudget,
	core.ErrInvalidRating,
	core.ErrEmptyProjectID,
	core.ErrEmptyCategory,
	core.ErrCategoryTooLong,
	core.ErrProjectIDTooLong,
	core.ErrInvalidRole,
	services.ErrMissingUser,
	services.ErrUnsupportedRole,
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to a status code and writes a JSON error body. Only
// client errors echo their message; anything else is logged and reported
// as a generic failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		body := errorResponse{Error: "validation failed"}
		for _, fe := range verrs {
			body.Details = append(body.Details, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	case errors.Is(err, errBadRequest), errors.Is(err, analytics.ErrInvalidQuery):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	for _, target := range unprocessable {
		if errors.Is(err, target) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
	}

	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldError, err.Error())
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
