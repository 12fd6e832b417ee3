package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkboard/kanban"
	"github.com/corkboard/corkboard/store"
)

type listHandler struct {
	*Router
}

type createListRequest struct {
	Title string `json:"title" validate:"required"`
	Order int    `json:"order"`
}

type updateListRequest struct {
	Title *string `json:"title"`
	Order *int    `json:"order"`
}

type renameListRequest struct {
	Title string `json:"title" validate:"required"`
}

type reorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

func (h *listHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	list, err := h.svc.CreateList(r.Context(), chi.URLParam(r, "boardID"), kanban.CreateListInput{
		Title: req.Title,
		Order: req.Order,
	})
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "list created", list)
}

func (h *listHandler) forBoard(w http.ResponseWriter, r *http.Request) {
	lists, err := h.svc.GetBoardLists(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", lists)
}

func (h *listHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateListRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	patch := store.Patch{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Order != nil {
		patch["order"] = *req.Order
	}
	if len(patch) == 0 {
		respondBadRequest(w, "no fields to update")
		return
	}

	list, err := h.svc.UpdateList(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "listID"), patch)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "list updated", list)
}

func (h *listHandler) rename(w http.ResponseWriter, r *http.Request) {
	var req renameListRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	list, err := h.svc.RenameList(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "listID"), req.Title)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "list renamed", list)
}

func (h *listHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteList(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "listID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "list deleted", nil)
}

func (h *listHandler) reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	lists, err := h.svc.ReorderLists(r.Context(), chi.URLParam(r, "boardID"), req.IDs)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "lists reordered", lists)
}
