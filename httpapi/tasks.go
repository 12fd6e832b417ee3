package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkboard/kanban"
	"github.com/corkboard/corkboard/store"
)

type taskHandler struct {
	*Router
}

type createTaskRequest struct {
	ListID      string   `json:"listId" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Assignee    string   `json:"assignee"`
	DueDate     string   `json:"dueDate"`
	Labels      []string `json:"labels"`
	Order       int      `json:"order"`
}

type updateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Assignee    *string   `json:"assignee"`
	DueDate     *string   `json:"dueDate"`
	Labels      *[]string `json:"labels"`
	Order       *int      `json:"order"`
}

type moveTaskRequest struct {
	ListID string `json:"listId" validate:"required"`
	Order  int    `json:"order"`
}

type reorderTasksRequest struct {
	ListID string   `json:"listId" validate:"required"`
	IDs    []string `json:"ids" validate:"required,min=1"`
}

func (h *taskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	task, err := h.svc.CreateTask(r.Context(), chi.URLParam(r, "boardID"), kanban.CreateTaskInput{
		ListID:      req.ListID,
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		DueDate:     req.DueDate,
		Labels:      req.Labels,
		Order:       req.Order,
	})
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "task created", task)
}

func (h *taskHandler) forBoard(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.GetBoardTasks(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", tasks)
}

func (h *taskHandler) forList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.GetListTasks(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "listID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", tasks)
}

func (h *taskHandler) byAssignee(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.GetTasksByAssignee(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", tasks)
}

func (h *taskHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	patch := store.Patch{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Assignee != nil {
		if *req.Assignee == "" {
			// An empty string cannot be written into the assignee index key;
			// clearing the assignee removes the attribute instead.
			patch["assignee"] = nil
		} else {
			patch["assignee"] = *req.Assignee
		}
	}
	if req.DueDate != nil {
		patch["dueDate"] = *req.DueDate
	}
	if req.Labels != nil {
		patch["labels"] = *req.Labels
	}
	if req.Order != nil {
		patch["order"] = *req.Order
	}
	if len(patch) == 0 {
		respondBadRequest(w, "no fields to update")
		return
	}

	task, err := h.svc.UpdateTask(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "taskID"), patch)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "task updated", task)
}

func (h *taskHandler) move(w http.ResponseWriter, r *http.Request) {
	var req moveTaskRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	task, err := h.svc.MoveTask(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "taskID"), req.ListID, req.Order)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "task moved", task)
}

func (h *taskHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "taskID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "task deleted", nil)
}

func (h *taskHandler) reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderTasksRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	tasks, err := h.svc.ReorderTasks(r.Context(), chi.URLParam(r, "boardID"), req.ListID, req.IDs)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "tasks reordered", tasks)
}
