package httpapi

import (
	"time"

	"github.com/dmitrijs2005/msgboard/internal/server/models"
)

type userDTO struct {
	ID        int64  `json:"id"`
	LoginName string `json:"loginName"`
}

type loginRequest struct {
	LoginName string `json:"loginName"`
	Password  string `json:"password"`
}

type loginResponse struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

type messageDTO struct {
	ID                int64     `json:"id"`
	Text              *string   `json:"text"`
	User              userDTO   `json:"user"`
	HasImage          bool      `json:"hasImage"`
	HasRecording      bool      `json:"hasRecording"`
	ImageFilename     *string   `json:"imageFilename"`
	RecordingFilename *string   `json:"recordingFilename"`
	CreatedAt         time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{ID: u.ID, LoginName: u.LoginName}
}

func toMessageDTO(m *models.Message) messageDTO {
	return messageDTO{
		ID:                m.ID,
		Text:              m.Text,
		User:              userDTO{ID: m.OwnerID, LoginName: m.OwnerName},
		HasImage:          m.HasImage(),
		HasRecording:      m.HasRecording(),
		ImageFilename:     filename(m.Image),
		RecordingFilename: filename(m.Recording),
		CreatedAt:         m.CreatedAt,
	}
}

func toMessageDTOs(ms []*models.Message) []messageDTO {
	out := make([]messageDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMessageDTO(m))
	}
	return out
}

func filename(m *models.Media) *string {
	if m == nil {
		return nil
	}
	name := m.Filename
	return &name
}
