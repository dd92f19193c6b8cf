package transporthttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"example.com/kalendas/internal/apperr"
	"example.com/kalendas/internal/resource"
)

var (
	errNotObject    = errors.New("request body must be a JSON object")
	errTrailingData = errors.New("request body must contain a single JSON object")
)

// decodeJSONStrict reads one JSON object into v, rejecting unknown fields.
func decodeJSONStrict(r *http.Request, v any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return errNotObject
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return errTrailingData
	}
	return nil
}

// writeDecodeError maps a body decoding failure to 413 or 422.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		WriteProblem(w, http.StatusRequestEntityTooLarge, "request too large", err.Error(), nil)
		return
	}
	WriteProblem(w, http.StatusUnprocessableEntity, "invalid json", err.Error(), nil)
}

// resourceHandlers serves the five CRUD operations of one resource type.
type resourceHandlers[T resource.Record, P resource.Patch] struct {
	svc *resource.Service[T, P]
	log *logrus.Entry
}

func (h *resourceHandlers[T, P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.Status(err) >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	WriteError(w, err)
}

func (h *resourceHandlers[T, P]) create(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)

	var rec T
	if err := decodeJSONStrict(r, &rec); err != nil {
		writeDecodeError(w, err)
		return
	}
	created, err := h.svc.Create(r.Context(), rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

func (h *resourceHandlers[T, P]) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context(), r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, recs)
}

func (h *resourceHandlers[T, P]) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (h *resourceHandlers[T, P]) update(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)

	var patch P
	if err := decodeJSONStrict(r, &patch); err != nil {
		writeDecodeError(w, err)
		return
	}
	rec, err := h.svc.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (h *resourceHandlers[T, P]) remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.fail(w, r, apperr.NotFoundf("%s with id %s not found", h.svc.Repository().Noun(), id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resource mounts the CRUD routes of svc under /{plural}. The collection is
// served both with and without a trailing slash.
func Resource[T resource.Record, P resource.Patch](plural string, svc *resource.Service[T, P]) Mount {
	return func(r *mux.Router, log *logrus.Entry) {
		h := &resourceHandlers[T, P]{svc: svc, log: log.WithField("resource", plural)}
		base := "/" + plural

		for _, p := range []string{base, base + "/"} {
			r.HandleFunc(p, h.create).Methods(http.MethodPost)
			r.HandleFunc(p, h.list).Methods(http.MethodGet)
		}
		r.HandleFunc(base+"/{id}", h.get).Methods(http.MethodGet)
		r.HandleFunc(base+"/{id}", h.update).Methods(http.MethodPut)
		r.HandleFunc(base+"/{id}", h.remove).Methods(http.MethodDelete)
	}
}
