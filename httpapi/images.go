package httpapi

import (
	"net/http"

	"github.com/corkboard/corkboard/kanban"
)

type imageHandler struct {
	*Router
}

type replaceImagesRequest struct {
	Images []newImageRequest `json:"images" validate:"required,min=1,dive"`
}

type newImageRequest struct {
	Description string `json:"description"`
	ContentType string `json:"contentType" validate:"required"`
}

func (h *imageHandler) list(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.ListImages(r.Context())
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", images)
}

// replace swaps the whole cover gallery in one call.
func (h *imageHandler) replace(w http.ResponseWriter, r *http.Request) {
	var req replaceImagesRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	ins := make([]kanban.NewImageInput, 0, len(req.Images))
	for _, img := range req.Images {
		ins = append(ins, kanban.NewImageInput{
			Description: img.Description,
			ContentType: img.ContentType,
		})
	}

	uploads, err := h.svc.ReplaceImages(r.Context(), ins)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "images replaced", uploads)
}
