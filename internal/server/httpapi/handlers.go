package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/server/models"
	"github.com/gorilla/mux"
)

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const multipartMemory = 8 << 20

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(ctx, h.logger, w, fmt.Errorf("%w: %v", common.ErrValidation, err))
			return
		}
	} else {
		if err := h.parseForm(w, r); err != nil {
			writeError(ctx, h.logger, w, err)
			return
		}
		req.LoginName = r.FormValue("loginName")
		req.Password = r.FormValue("password")
	}

	if req.LoginName == "" || req.Password == "" {
		writeError(ctx, h.logger, w, fmt.Errorf("%w: loginName and password are required", common.ErrValidation))
		return
	}

	res, err := h.users.Login(ctx, req.LoginName, req.Password)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	writeJSON(ctx, h.logger, w, http.StatusOK, loginResponse{User: toUserDTO(res.User), Token: res.Token})
}

func (h *handlers) createMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := pathInt64(r, "userId")
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	if err := h.parseForm(w, r); err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}
	defer removeMultipart(r)

	recording, image, err := readUploads(r)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	msg, err := h.messages.Create(ctx, ownerID, formValue(r, "text"), recording, image)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	writeJSON(ctx, h.logger, w, http.StatusCreated, toMessageDTO(msg))
}

func (h *handlers) modifyText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, messageID, err := ownerAndMessage(r)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	if err := h.parseForm(w, r); err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}
	defer removeMultipart(r)

	newText := formValue(r, "newText")
	if newText == nil {
		writeError(ctx, h.logger, w, fmt.Errorf("%w: newText is required", common.ErrValidation))
		return
	}

	msg, err := h.messages.ModifyText(ctx, ownerID, messageID, *newText)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	writeJSON(ctx, h.logger, w, http.StatusOK, toMessageDTO(msg))
}

func (h *handlers) replaceMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, messageID, err := ownerAndMessage(r)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	if err := h.parseForm(w, r); err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}
	defer removeMultipart(r)

	recording, image, err := readUploads(r)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	msg, err := h.messages.ReplaceMedia(ctx, ownerID, messageID, recording, image)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	writeJSON(ctx, h.logger, w, http.StatusOK, toMessageDTO(msg))
}

func (h *handlers) listByOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := pathInt64(r, "userId")
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	msgs, err := h.messages.ListByOwner(ctx, ownerID)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	writeJSON(ctx, h.logger, w, http.StatusOK, toMessageDTOs(msgs))
}

func (h *handlers) listAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	msgs, err := h.messages.ListAll(ctx)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	writeJSON(ctx, h.logger, w, http.StatusOK, toMessageDTOs(msgs))
}

func (h *handlers) serveMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	messageID, err := pathInt64(r, "messageId")
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}
	kind, err := models.ParseMediaKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	content, err := h.messages.RetrieveMedia(ctx, messageID, kind)
	if err != nil {
		writeError(ctx, h.logger, w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(kind, content.Filename))
	w.Header().Set("Cache-Control", "public, max-age=3600")

	// recordings are seekable in audio players
	if kind == models.MediaRecording {
		http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(content.Content))
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(content.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content.Content); err != nil {
		h.logger.Warn(ctx, "write media failed", "message_id", messageID, "error", err)
	}
}

// --- helpers below ---

// parseForm reads a multipart or urlencoded body capped at maxUploadBytes.
func (h *handlers) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func removeMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// formValue distinguishes an absent field (nil) from an empty one.
func formValue(r *http.Request, key string) *string {
	vals, ok := r.Form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

func readUploads(r *http.Request) (recording, image *models.Upload, err error) {
	if recording, err = readUpload(r, string(models.MediaRecording)); err != nil {
		return nil, nil, err
	}
	if image, err = readUpload(r, string(models.MediaImage)); err != nil {
		return nil, nil, err
	}
	return recording, image, nil
}

func readUpload(r *http.Request, field string) (*models.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}

	f, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &models.Upload{Filename: files[0].Filename, Content: content}, nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s", common.ErrValidation, name)
	}
	return v, nil
}

func ownerAndMessage(r *http.Request) (int64, int64, error) {
	ownerID, err := pathInt64(r, "userId")
	if err != nil {
		return 0, 0, err
	}
	messageID, err := pathInt64(r, "messageId")
	if err != nil {
		return 0, 0, err
	}
	return ownerID, messageID, nil
}
