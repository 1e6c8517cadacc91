package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/netx"
)

type User struct {
	ID        int64  `json:"id"`
	LoginName string `json:"loginName"`
}

type Message struct {
	ID                int64     `json:"id"`
	Text              *string   `json:"text"`
	User              User      `json:"user"`
	HasImage          bool      `json:"hasImage"`
	HasRecording      bool      `json:"hasRecording"`
	ImageFilename     *string   `json:"imageFilename"`
	RecordingFilename *string   `json:"recordingFilename"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// File is a local file queued for upload. A nil *File means "no file".
type File struct {
	Name    string
	Content []byte
}

// Media is a downloaded attachment.
type Media struct {
	ContentType string
	Content     []byte
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. A zero timeout means none.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", "", nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) Login(ctx context.Context, loginName, password string) (*Session, error) {
	body, err := netx.JSONBody(map[string]string{"loginName": loginName, "password": password})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/users/login", "", body, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode login: %w", err)
	}
	return &s, nil
}

func (c *Client) ListAll(ctx context.Context) ([]Message, error) {
	return c.list(ctx, "/api/users/messages", "")
}

func (c *Client) ListByOwner(ctx context.Context, s *Session, ownerID int64) ([]Message, error) {
	return c.list(ctx, "/api/users/"+strconv.FormatInt(ownerID, 10)+"/messages", s.Token)
}

// Post creates a message owned by the session user. Any of text, recording
// and image may be absent.
func (c *Client) Post(ctx context.Context, s *Session, text *string, recording, image *File) (*Message, error) {
	fields := map[string]string{}
	if text != nil {
		fields["text"] = *text
	}
	return c.sendForm(ctx, http.MethodPost, c.ownerPath(s)+"/messages", s.Token, fields, recording, image)
}

func (c *Client) Edit(ctx context.Context, s *Session, messageID int64, newText string) (*Message, error) {
	path := c.ownerPath(s) + "/messages/" + strconv.FormatInt(messageID, 10)
	return c.sendForm(ctx, http.MethodPut, path, s.Token, map[string]string{"newText": newText}, nil, nil)
}

// Attach replaces the recording and/or image of a message. Absent files
// leave the current attachment untouched.
func (c *Client) Attach(ctx context.Context, s *Session, messageID int64, recording, image *File) (*Message, error) {
	path := c.ownerPath(s) + "/messages/" + strconv.FormatInt(messageID, 10) + "/files"
	return c.sendForm(ctx, http.MethodPut, path, s.Token, nil, recording, image)
}

// Download fetches the decrypted attachment of kind ("image" or "recording").
func (c *Client) Download(ctx context.Context, messageID int64, kind string) (*Media, error) {
	path := "/api/users/messages/" + strconv.FormatInt(messageID, 10) + "/" + url.PathEscape(kind)
	resp, err := c.do(ctx, http.MethodGet, path, "", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return &Media{ContentType: ct, Content: content}, nil
}

func (c *Client) ownerPath(s *Session) string {
	return "/api/users/" + strconv.FormatInt(s.User.ID, 10)
}

func (c *Client) list(ctx context.Context, path, token string) ([]Message, error) {
	resp, err := c.do(ctx, http.MethodGet, path, token, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ms []Message
	if err := json.NewDecoder(resp.Body).Decode(&ms); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return ms, nil
}

func (c *Client) sendForm(ctx context.Context, method, path, token string, fields map[string]string, recording, image *File) (*Message, error) {
	var files []netx.FilePart
	if recording != nil {
		files = append(files, netx.FilePart{Field: "recording", Filename: recording.Name, Content: recording.Content})
	}
	if image != nil {
		files = append(files, netx.FilePart{Field: "image", Filename: image.Name, Content: image.Content})
	}

	body, ct, err := netx.MultipartBody(fields, files)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, method, path, token, body, ct)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var m Message
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &m, nil
}

// do sends the request and returns the response only for 2xx statuses.
// The caller closes the body.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	msg := netx.ErrorMessage(resp)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrForbidden, msg)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
	case resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}
}
