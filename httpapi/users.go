package httpapi

import (
	"net/http"

	"github.com/corkboard/corkboard/kanban"
)

type userHandler struct {
	*Router
}

type createUserRequest struct {
	UID     string `json:"uid" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required"`
	Picture string `json:"picture"`
}

func (h *userHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	user, err := h.svc.CreateUser(r.Context(), kanban.CreateUserInput{
		UID:     req.UID,
		Email:   req.Email,
		Name:    req.Name,
		Picture: req.Picture,
	})
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "user created", user)
}

// get looks a user up by uid or, when the email query parameter is set, by
// email through the email index.
func (h *userHandler) get(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		user, err := h.svc.GetUserByEmail(r.Context(), email)
		if err != nil {
			respondErr(w, h.logger, err)
			return
		}
		respondData(w, "", user)
		return
	}

	uid := r.URL.Query().Get("uid")
	if uid == "" {
		respondBadRequest(w, "uid or email query parameter required")
		return
	}
	user, err := h.svc.GetUser(r.Context(), uid)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", user)
}
