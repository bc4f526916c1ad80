package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"taskdeck.org/internal/task"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
	Order       *int    `json:"order"`
}

func (a *API) handleTasks(w http.ResponseWriter, r *http.Request) {
	if a.tasks == nil {
		writeError(w, r, http.StatusServiceUnavailable, "task service unavailable")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.listTasks(w, r)
	case http.MethodPost:
		a.createTask(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tasks, err := a.tasks.List(r.Context(), p)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	created, err := a.tasks.Create(r.Context(), p, task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      task.Status(req.Status),
	})
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/v1/tasks/%s", created.ID))
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	if a.tasks == nil {
		writeError(w, r, http.StatusServiceUnavailable, "task service unavailable")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/tasks/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		a.updateTask(w, r, id)
	case http.MethodDelete:
		a.deleteTask(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	in := task.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Order:       req.Order,
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		in.Status = &status
	}
	updated, err := a.tasks.Update(r.Context(), p, id, in)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := a.tasks.Remove(r.Context(), p, id); err != nil {
		handleTaskError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, task.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, task.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
