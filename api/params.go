package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"email-designer/param"
	"email-designer/placeholder"
)

// paramView is one row of the parameter editor. Token is the placeholder to
// type into the template, present once the key is set.
type paramView struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Token string `json:"token,omitempty"`
}

func viewParam(i int, p param.Parameter) paramView {
	v := paramView{Index: i, Key: p.Key, Value: p.Value}
	if p.Key != "" {
		v.Token = placeholder.Token(p.Key)
	}
	return v
}

func viewParams(ps []param.Parameter) []paramView {
	out := make([]paramView, len(ps))
	for i, p := range ps {
		out[i] = viewParam(i, p)
	}
	return out
}

func (h *handler) listParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]paramView{"params": viewParams(h.ctrl.Params().List())})
}

func (h *handler) addParam(w http.ResponseWriter, r *http.Request) {
	i := h.ctrl.Params().Add()
	writeJSON(w, http.StatusCreated, paramView{Index: i})
}

func (h *handler) setParamField(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	field, err := param.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		writeFailure(w, err)
		return
	}

	var body struct {
		Value *string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Value == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store := h.ctrl.Params()
	if err := store.SetField(index, field, *body.Value); err != nil {
		writeFailure(w, err)
		return
	}
	p, err := store.Get(index)
	if err != nil {
		// Deleted concurrently.
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewParam(index, p))
}

func (h *handler) deleteParam(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ctrl.Params().Delete(index); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) insertParam(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ctrl.InsertParameter(r.Context(), index); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	return i, nil
}
