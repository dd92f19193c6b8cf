package transporthttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"example.com/kalendas/internal/apperr"
)

type Problem struct {
	Type     string              `json:"type,omitempty"`
	Title    string              `json:"title,omitempty"`
	Status   int                 `json:"status,omitempty"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

func WriteProblem(w http.ResponseWriter, status int, title, detail string, errs map[string][]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  title,
		Status: status,
		Detail: detail,
		Errors: errs,
	})
}

// WriteError renders err as a problem document with the status of its kind.
// Causes wrapped inside an *apperr.Error are not exposed to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	detail := http.StatusText(status)
	var fields map[string][]string

	var e *apperr.Error
	if errors.As(err, &e) {
		detail = e.Msg
		fields = e.Fields
	}
	WriteProblem(w, status, apperr.KindOf(err).String(), detail, fields)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
