package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkboard/kanban"
	"github.com/corkboard/corkboard/store"
)

type boardHandler struct {
	*Router
}

type createBoardRequest struct {
	Title      string   `json:"title" validate:"required"`
	Admin      string   `json:"admin" validate:"required"`
	CoverPhoto string   `json:"coverPhoto"`
	Visibility string   `json:"visibility" validate:"omitempty,oneof=private public"`
	Users      []string `json:"users"`
}

type updateBoardRequest struct {
	Title      *string `json:"title"`
	CoverPhoto *string `json:"coverPhoto"`
	Visibility *string `json:"visibility" validate:"omitempty,oneof=private public"`
}

type inviteUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *boardHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	board, err := h.svc.CreateBoard(r.Context(), kanban.CreateBoardInput{
		Title:      req.Title,
		Admin:      req.Admin,
		CoverPhoto: req.CoverPhoto,
		Visibility: req.Visibility,
		Users:      req.Users,
	})
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "board created", board)
}

func (h *boardHandler) get(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.GetBoard(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", board)
}

func (h *boardHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateBoardRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	patch := store.Patch{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.CoverPhoto != nil {
		patch["coverPhoto"] = *req.CoverPhoto
	}
	if req.Visibility != nil {
		patch["visibility"] = *req.Visibility
	}
	if len(patch) == 0 {
		respondBadRequest(w, "no fields to update")
		return
	}

	board, err := h.svc.UpdateBoard(r.Context(), chi.URLParam(r, "boardID"), patch)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "board updated", board)
}

func (h *boardHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBoard(r.Context(), chi.URLParam(r, "boardID")); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "board deleted", nil)
}

func (h *boardHandler) invite(w http.ResponseWriter, r *http.Request) {
	var req inviteUserRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	membership, err := h.svc.InviteUser(r.Context(), chi.URLParam(r, "boardID"), req.Email)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "user invited", membership)
}

func (h *boardHandler) users(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.GetBoardUsers(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", members)
}

func (h *boardHandler) removeUser(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveUser(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "userID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "user removed", nil)
}

func (h *boardHandler) userBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.svc.GetUserBoards(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", boards)
}
