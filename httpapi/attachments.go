package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkboard/kanban"
)

type attachmentHandler struct {
	*Router
}

type uploadURLRequest struct {
	FileName    string `json:"fileName" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
}

type createAttachmentRequest struct {
	TaskID      string `json:"taskId" validate:"required"`
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName" validate:"required"`
	S3Key       string `json:"s3Key" validate:"required"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// uploadURL mints a presigned PUT so the client uploads the file body
// straight to the bucket; the metadata item is created afterwards via create.
func (h *attachmentHandler) uploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	ticket, err := h.svc.NewUploadURL(r.Context(), req.FileName, req.ContentType)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "upload url issued", ticket)
}

func (h *attachmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAttachmentRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	att, err := h.svc.CreateAttachment(r.Context(), kanban.CreateAttachmentInput{
		TaskID:      req.TaskID,
		ID:          req.FileID,
		FileName:    req.FileName,
		S3Key:       req.S3Key,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respond(w, http.StatusCreated, "attachment created", att)
}

func (h *attachmentHandler) forTask(w http.ResponseWriter, r *http.Request) {
	atts, err := h.svc.GetTaskAttachments(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "", atts)
}

func (h *attachmentHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteAttachment(r.Context(), chi.URLParam(r, "taskID"), chi.URLParam(r, "attachmentID"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondData(w, "attachment deleted", nil)
}
