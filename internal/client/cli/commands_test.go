package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/msgboard/internal/client/client"
	"github.com/dmitrijs2005/msgboard/internal/client/config"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fakeAPI struct {
	session  *client.Session
	messages []client.Message
	media    map[string]*client.Media

	loginErr error
	mineErr  error

	gotPassword  string
	gotText      *string
	gotEdit      string
	gotRecording *client.File
	gotImage     *client.File
}

func (f *fakeAPI) Ping(context.Context) error { return nil }

func (f *fakeAPI) Login(_ context.Context, name, password string) (*client.Session, error) {
	f.gotPassword = password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.session = &client.Session{User: client.User{ID: 1, LoginName: name}, Token: "tok"}
	return f.session, nil
}

func (f *fakeAPI) ListAll(context.Context) ([]client.Message, error) { return f.messages, nil }

func (f *fakeAPI) ListByOwner(_ context.Context, _ *client.Session, ownerID int64) ([]client.Message, error) {
	if f.mineErr != nil {
		return nil, f.mineErr
	}
	var out []client.Message
	for _, m := range f.messages {
		if m.User.ID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeAPI) Post(_ context.Context, _ *client.Session, text *string, recording, image *client.File) (*client.Message, error) {
	f.gotText, f.gotRecording, f.gotImage = text, recording, image
	return &client.Message{ID: 42}, nil
}

func (f *fakeAPI) Edit(_ context.Context, _ *client.Session, id int64, text string) (*client.Message, error) {
	f.gotEdit = text
	return &client.Message{ID: id, Text: &text}, nil
}

func (f *fakeAPI) Attach(_ context.Context, _ *client.Session, id int64, recording, image *client.File) (*client.Message, error) {
	f.gotRecording, f.gotImage = recording, image
	return &client.Message{ID: id}, nil
}

func (f *fakeAPI) Download(_ context.Context, id int64, kind string) (*client.Media, error) {
	m, ok := f.media[kind]
	if !ok {
		return nil, client.ErrNotFound
	}
	return m, nil
}

func newTestApp(t *testing.T, api *fakeAPI, input string) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &App{
		config:    &config.Config{DownloadDir: t.TempDir()},
		api:       api,
		reader:    bufio.NewReader(strings.NewReader(input)),
		out:       out,
		filenames: map[mediaRef]string{},
	}, out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func ptr(s string) *string { return &s }

func TestLogin(t *testing.T) {
	stubPassword(t, "HappyBirthday")

	t.Run("name from args", func(t *testing.T) {
		api := &fakeAPI{}
		app, out := newTestApp(t, api, "")

		require.NoError(t, app.Login(context.Background(), []string{"rei"}))
		assert.True(t, app.isLoggedIn())
		assert.Equal(t, "rei", app.status())
		assert.Equal(t, "HappyBirthday", api.gotPassword)
		assert.Contains(t, out.String(), "Logged in as rei")
	})

	t.Run("name prompted", func(t *testing.T) {
		app, _ := newTestApp(t, &fakeAPI{}, "sam\n")

		require.NoError(t, app.Login(context.Background(), nil))
		assert.Equal(t, "sam", app.status())
	})

	t.Run("rejected", func(t *testing.T) {
		app, out := newTestApp(t, &fakeAPI{loginErr: client.ErrUnauthorized}, "")

		err := app.Login(context.Background(), []string{"rei"})
		assert.ErrorIs(t, err, client.ErrUnauthorized)
		assert.False(t, app.isLoggedIn())
		assert.Contains(t, out.String(), "login: unauthorized")
	})
}

func TestLogout(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{}, "")
	app.session = &client.Session{}

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.isLoggedIn())
	assert.Equal(t, "guest", app.status())
}

func TestListAndMine(t *testing.T) {
	api := &fakeAPI{messages: []client.Message{
		{ID: 2, Text: ptr("second\nline"), User: client.User{ID: 1, LoginName: "rei"}, HasImage: true, ImageFilename: ptr("cake.png")},
		{ID: 1, User: client.User{ID: 2, LoginName: "sam"}, HasRecording: true, RecordingFilename: ptr("song.mp3")},
	}}
	app, out := newTestApp(t, api, "")
	app.session = &client.Session{User: client.User{ID: 1, LoginName: "rei"}}

	require.NoError(t, app.List(context.Background()))
	s := out.String()
	assert.Contains(t, s, "#2 rei")
	assert.Contains(t, s, "    second\n    line")
	assert.Contains(t, s, "[image: cake.png]")
	assert.Contains(t, s, "[recording: song.mp3]")
	assert.Equal(t, "cake.png", app.filenames[mediaRef{2, "image"}])

	out.Reset()
	require.NoError(t, app.Mine(context.Background()))
	assert.Contains(t, out.String(), "#2 rei")
	assert.NotContains(t, out.String(), "sam")
}

func TestMine_ExpiredSessionLogsOut(t *testing.T) {
	app, out := newTestApp(t, &fakeAPI{mineErr: client.ErrUnauthorized}, "")
	app.session = &client.Session{User: client.User{ID: 1}}

	err := app.Mine(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, app.isLoggedIn())
	assert.Contains(t, out.String(), "please login again")
}

func TestPost(t *testing.T) {
	dir := t.TempDir()
	rec := filepath.Join(dir, "voice.mp3")
	require.NoError(t, os.WriteFile(rec, []byte("mp3"), 0o600))

	t.Run("text and recording", func(t *testing.T) {
		api := &fakeAPI{}
		app, out := newTestApp(t, api, "Happy\nbirthday\n\n"+rec+"\n\n")
		app.session = &client.Session{}

		require.NoError(t, app.Post(context.Background()))
		require.NotNil(t, api.gotText)
		assert.Equal(t, "Happy\nbirthday", *api.gotText)
		require.NotNil(t, api.gotRecording)
		assert.Equal(t, "voice.mp3", api.gotRecording.Name)
		assert.Equal(t, []byte("mp3"), api.gotRecording.Content)
		assert.Nil(t, api.gotImage)
		assert.Contains(t, out.String(), "Posted message #42")
	})

	t.Run("empty text is absent", func(t *testing.T) {
		api := &fakeAPI{}
		app, _ := newTestApp(t, api, "\n\n"+rec+"\n")
		app.session = &client.Session{}

		require.NoError(t, app.Post(context.Background()))
		assert.Nil(t, api.gotText)
		assert.NotNil(t, api.gotImage)
	})

	t.Run("missing file", func(t *testing.T) {
		api := &fakeAPI{}
		app, out := newTestApp(t, api, "hi\n\n/does/not/exist\n")
		app.session = &client.Session{}

		assert.Error(t, app.Post(context.Background()))
		assert.Contains(t, out.String(), "post:")
	})
}

func TestEdit(t *testing.T) {
	api := &fakeAPI{}
	app, out := newTestApp(t, api, "new words\n\n")
	app.session = &client.Session{}

	require.NoError(t, app.Edit(context.Background(), []string{"7"}))
	assert.Equal(t, "new words", api.gotEdit)
	assert.Contains(t, out.String(), "Updated message #7")

	assert.ErrorIs(t, app.Edit(context.Background(), nil), errUsage)
	assert.ErrorIs(t, app.Edit(context.Background(), []string{"x"}), errUsage)
	assert.ErrorIs(t, app.Edit(context.Background(), []string{"-1"}), errUsage)
}

func TestAttach(t *testing.T) {
	img := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o600))

	t.Run("image only", func(t *testing.T) {
		api := &fakeAPI{}
		app, _ := newTestApp(t, api, "\n"+img+"\n")
		app.session = &client.Session{}

		require.NoError(t, app.Attach(context.Background(), []string{"3"}))
		assert.Nil(t, api.gotRecording)
		require.NotNil(t, api.gotImage)
		assert.Equal(t, "pic.png", api.gotImage.Name)
	})

	t.Run("nothing to attach", func(t *testing.T) {
		api := &fakeAPI{}
		app, out := newTestApp(t, api, "\n\n")
		app.session = &client.Session{}

		require.NoError(t, app.Attach(context.Background(), []string{"3"}))
		assert.Contains(t, out.String(), "Nothing to attach")
	})
}

func TestGet(t *testing.T) {
	api := &fakeAPI{media: map[string]*client.Media{
		"recording": {ContentType: "audio/mpeg", Content: []byte("sound")},
		"image":     {ContentType: "application/x-unknown-kind", Content: []byte("px")},
	}}

	t.Run("remembered filename", func(t *testing.T) {
		app, out := newTestApp(t, api, "")
		app.filenames[mediaRef{5, "recording"}] = "../../song.mp3"

		require.NoError(t, app.Get(context.Background(), []string{"5", "recording"}))

		b, err := os.ReadFile(filepath.Join(app.config.DownloadDir, "song.mp3"))
		require.NoError(t, err)
		assert.Equal(t, "sound", string(b))
		assert.Contains(t, out.String(), "Saved 5 bytes")
	})

	t.Run("fallback filename", func(t *testing.T) {
		app, _ := newTestApp(t, api, "")

		require.NoError(t, app.Get(context.Background(), []string{"5", "image"}))
		_, err := os.Stat(filepath.Join(app.config.DownloadDir, "message-5-image"))
		assert.NoError(t, err)
	})

	t.Run("usage", func(t *testing.T) {
		app, _ := newTestApp(t, api, "")
		assert.ErrorIs(t, app.Get(context.Background(), []string{"5"}), errUsage)
		assert.ErrorIs(t, app.Get(context.Background(), []string{"5", "video"}), errUsage)
		assert.ErrorIs(t, app.Get(context.Background(), []string{"x", "image"}), errUsage)
	})

	t.Run("not found", func(t *testing.T) {
		app, out := newTestApp(t, &fakeAPI{}, "")
		err := app.Get(context.Background(), []string{"5", "image"})
		assert.True(t, errors.Is(err, client.ErrNotFound))
		assert.Contains(t, out.String(), "get: not found")
	})
}

func TestFormatMessage_CreatedAt(t *testing.T) {
	at := time.Date(2026, 1, 9, 11, 30, 0, 0, time.Local)
	s := formatMessage(client.Message{ID: 1, User: client.User{LoginName: "rei"}, CreatedAt: at})
	assert.Equal(t, "#1 rei 2026-01-09 11:30", s)
}
