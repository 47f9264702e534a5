package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/models"
	"github.com/chepyr/task-collab-api/internal/policy"
)

const (
	maxTitleLength = 160
	dueDateLayout  = "2006-01-02"
)

type taskInput struct {
	Owner       *string `json:"owner"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status"`
}

// taskResponse is the wire shape of a task: raw status/priority codes plus
// their display names, owner excluded.
type taskResponse struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Priority        string     `json:"priority"`
	PriorityDisplay string     `json:"priority_display"`
	Status          string     `json:"status"`
	StatusDisplay   string     `json:"status_display"`
	DueDate         *string    `json:"due_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	resp := taskResponse{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		Priority:        string(task.Priority),
		PriorityDisplay: task.Priority.Display(),
		Status:          string(task.Status),
		StatusDisplay:   task.Status.Display(),
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
		CompletedAt:     task.CompletedAt,
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(dueDateLayout)
		resp.DueDate = &due
	}
	return resp
}

/*
handles routes:
GET /tasks - list the caller's tasks
POST /tasks - create a task
*/
func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		sendErrorMessage(w, "general", "Method not allowed", http.StatusMethodNotAllowed)
	}
}

/*
handles routes:
- GET /tasks/{id}
- PUT/PATCH /tasks/{id}
- DELETE /tasks/{id}
*/
func (h *Handler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	taskIDStr := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if taskIDStr == "" {
		sendErrorMessage(w, "general", "task id is required", http.StatusBadRequest)
		return
	}
	taskID, err := uuid.Parse(taskIDStr)
	if err != nil {
		// malformed ids are indistinguishable from missing ones
		sendError(w, apperr.ErrNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTask(w, r, taskID)
	case http.MethodPut, http.MethodPatch:
		h.updateTask(w, r, taskID)
	case http.MethodDelete:
		h.deleteTask(w, r, taskID)
	default:
		sendErrorMessage(w, "general", "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if decision := h.Policy.Authorize(caller, policy.ActionList, "", nil); decision != policy.Allow {
		sendError(w, decision.Err())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.TaskRepo.ListByOwner(ctx, caller.ID)
	if err != nil {
		sendError(w, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, newTaskResponse(task))
	}
	sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if caller == nil {
		sendError(w, apperr.ErrUnauthenticated)
		return
	}
	if !isJSONContentType(r) {
		sendErrorMessage(w, "general", "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	var input taskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendErrorMessage(w, "general", "Invalid JSON body", http.StatusBadRequest)
		return
	}

	// The owner gate runs before any validation or persistence: creating a
	// task attributed to another account is rejected, never re-attributed.
	declaredOwner := ""
	if input.Owner != nil {
		declaredOwner = strings.TrimSpace(*input.Owner)
	}
	if declaredOwner != "" {
		if decision := h.Policy.Authorize(caller, policy.ActionCreate, declaredOwner, nil); decision != policy.Allow {
			sendError(w, decision.Err())
			return
		}
	}

	verrs := apperr.ValidationErrors{}
	if declaredOwner == "" {
		verrs = append(verrs, apperr.FieldError{Field: "owner", Message: "owner is required"})
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.New(),
		OwnerID:   caller.ID,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		verrs = append(verrs, apperr.FieldError{Field: "title", Message: "title is required"})
	} else {
		title := strings.TrimSpace(*input.Title)
		if len(title) > maxTitleLength {
			verrs = append(verrs, apperr.FieldError{Field: "title", Message: "title must be at most 160 characters"})
		}
		task.Title = title
	}

	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}

	if input.Priority == nil || *input.Priority == "" {
		verrs = append(verrs, apperr.FieldError{Field: "priority", Message: "priority is required"})
	} else if priority, ok := models.ParsePriority(*input.Priority); ok {
		task.Priority = priority
	} else {
		verrs = append(verrs, apperr.FieldError{Field: "priority", Message: "invalid priority"})
	}

	if input.Status != nil && *input.Status != "" {
		if status, ok := models.ParseStatus(*input.Status); ok {
			task.Status = status
		} else {
			verrs = append(verrs, apperr.FieldError{Field: "status", Message: "invalid status"})
		}
	}

	if input.DueDate != nil && *input.DueDate != "" {
		if due, err := time.Parse(dueDateLayout, *input.DueDate); err == nil {
			task.DueDate = &due
		} else {
			verrs = append(verrs, apperr.FieldError{Field: "due_date", Message: "due_date must be YYYY-MM-DD"})
		}
	}

	if len(verrs) > 0 {
		sendError(w, verrs)
		return
	}

	if task.Status == models.StatusCompleted {
		task.CompletedAt = &now
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.TaskRepo.Create(ctx, task); err != nil {
		sendError(w, err)
		return
	}

	h.Hub.Broadcast(caller.ID, "task_created", task)
	w.Header().Set("Location", "/tasks/"+task.ID.String())
	sendJSON(w, http.StatusCreated, newTaskResponse(task))
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	caller := CallerFromContext(r.Context())
	if caller == nil {
		sendError(w, apperr.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// owner-scoped lookup: a foreign task yields the same NotFound as a
	// nonexistent one
	task, err := h.TaskRepo.GetByIDForOwner(ctx, taskID, caller.ID)
	if err != nil {
		sendError(w, err)
		return
	}

	if decision := h.Policy.Authorize(caller, policy.ActionRetrieve, "", task); decision != policy.Allow {
		sendError(w, decision.Err())
		return
	}

	sendJSON(w, http.StatusOK, newTaskResponse(task))
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	caller := CallerFromContext(r.Context())
	if caller == nil {
		sendError(w, apperr.ErrUnauthenticated)
		return
	}
	if !isJSONContentType(r) {
		sendErrorMessage(w, "general", "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.TaskRepo.GetByIDForOwner(ctx, taskID, caller.ID)
	if err != nil {
		sendError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	var input taskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendErrorMessage(w, "general", "Invalid JSON body", http.StatusBadRequest)
		return
	}

	// owner is immutable; naming anyone else is rejected, naming the caller
	// is a no-op
	declaredOwner := ""
	if input.Owner != nil {
		declaredOwner = strings.TrimSpace(*input.Owner)
	}
	if decision := h.Policy.Authorize(caller, policy.ActionUpdate, declaredOwner, task); decision != policy.Allow {
		sendError(w, decision.Err())
		return
	}

	verrs := apperr.ValidationErrors{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			verrs = append(verrs, apperr.FieldError{Field: "title", Message: "title cannot be empty"})
		} else if len(title) > maxTitleLength {
			verrs = append(verrs, apperr.FieldError{Field: "title", Message: "title must be at most 160 characters"})
		} else {
			task.Title = title
		}
	}

	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}

	if input.Priority != nil {
		if priority, ok := models.ParsePriority(*input.Priority); ok {
			task.Priority = priority
		} else {
			verrs = append(verrs, apperr.FieldError{Field: "priority", Message: "invalid priority"})
		}
	}

	if input.DueDate != nil {
		if *input.DueDate == "" {
			task.DueDate = nil
		} else if due, err := time.Parse(dueDateLayout, *input.DueDate); err == nil {
			task.DueDate = &due
		} else {
			verrs = append(verrs, apperr.FieldError{Field: "due_date", Message: "due_date must be YYYY-MM-DD"})
		}
	}

	if input.Status != nil {
		if status, ok := models.ParseStatus(*input.Status); ok {
			task.Status = status
		} else {
			verrs = append(verrs, apperr.FieldError{Field: "status", Message: "invalid status"})
		}
	}

	if len(verrs) > 0 {
		sendError(w, verrs)
		return
	}

	now := time.Now().UTC()
	// completed_at is stamped on the first transition into Completed and
	// stays fixed afterwards; repeated PUTs with status=C do not refresh it
	if task.Status == models.StatusCompleted && task.CompletedAt == nil {
		task.CompletedAt = &now
	}
	task.UpdatedAt = now

	if err := h.TaskRepo.Update(ctx, task); err != nil {
		sendError(w, err)
		return
	}

	h.Hub.Broadcast(caller.ID, "task_updated", task)
	sendJSON(w, http.StatusOK, newTaskResponse(task))
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	caller := CallerFromContext(r.Context())
	if caller == nil {
		sendError(w, apperr.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// deleting an invisible task is the same NotFound as deleting a
	// never-existing one
	if err := h.TaskRepo.DeleteForOwner(ctx, taskID, caller.ID); err != nil {
		sendError(w, err)
		return
	}

	h.Hub.BroadcastDeleted(caller.ID, taskID)
	w.WriteHeader(http.StatusNoContent)
}
