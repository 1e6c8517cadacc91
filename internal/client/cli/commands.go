package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/msgboard/internal/client/client"
	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/filex"
	"github.com/fatih/color"
)

var errUsage = errors.New("usage")

func (a *App) Login(ctx context.Context, args []string) error {
	var name string
	var err error
	if len(args) > 0 {
		name = args[0]
	} else if name, err = GetSimpleText(a.reader, "Login name", a.out); err != nil {
		return a.fail("login", err)
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return a.fail("login", err)
	}
	defer common.WipeByteArray(password)

	s, err := a.api.Login(ctx, name, string(password))
	if err != nil {
		return a.fail("login", err)
	}
	a.session = s
	a.printf("%s Logged in as %s (id %d)\n", color.GreenString("✓"), s.User.LoginName, s.User.ID)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session = nil
	a.printf("Logged out\n")
	return nil
}

func (a *App) List(ctx context.Context) error {
	ms, err := a.api.ListAll(ctx)
	if err != nil {
		return a.fail("list", err)
	}
	a.printMessages(ms)
	return nil
}

func (a *App) Mine(ctx context.Context) error {
	ms, err := a.api.ListByOwner(ctx, a.session, a.session.User.ID)
	if err != nil {
		return a.fail("mine", err)
	}
	a.printMessages(ms)
	return nil
}

func (a *App) Post(ctx context.Context) error {
	text, err := GetMultiline(a.reader, "Message text (optional)", a.out)
	if err != nil {
		return a.fail("post", err)
	}
	recording, image, err := a.promptFiles()
	if err != nil {
		return a.fail("post", err)
	}

	var textPtr *string
	if text != "" {
		textPtr = &text
	}

	m, err := a.api.Post(ctx, a.session, textPtr, recording, image)
	if err != nil {
		return a.fail("post", err)
	}
	a.printf("%s Posted message #%d\n", color.GreenString("✓"), m.ID)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := messageIDArg(args)
	if err != nil {
		a.printf("Usage: edit <id>\n")
		return err
	}

	text, err := GetMultiline(a.reader, "New text", a.out)
	if err != nil {
		return a.fail("edit", err)
	}

	m, err := a.api.Edit(ctx, a.session, id, text)
	if err != nil {
		return a.fail("edit", err)
	}
	a.printf("%s Updated message #%d\n", color.GreenString("✓"), m.ID)
	return nil
}

func (a *App) Attach(ctx context.Context, args []string) error {
	id, err := messageIDArg(args)
	if err != nil {
		a.printf("Usage: attach <id>\n")
		return err
	}

	recording, image, err := a.promptFiles()
	if err != nil {
		return a.fail("attach", err)
	}
	if recording == nil && image == nil {
		a.printf("Nothing to attach\n")
		return nil
	}

	m, err := a.api.Attach(ctx, a.session, id, recording, image)
	if err != nil {
		return a.fail("attach", err)
	}
	a.printf("%s Updated files of message #%d\n", color.GreenString("✓"), m.ID)
	return nil
}

// Get downloads an attachment into the configured download directory.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 2 || (args[1] != "image" && args[1] != "recording") {
		a.printf("Usage: get <id> image|recording\n")
		return errUsage
	}
	id, err := messageIDArg(args)
	if err != nil {
		a.printf("Usage: get <id> image|recording\n")
		return err
	}
	kind := args[1]

	media, err := a.api.Download(ctx, id, kind)
	if err != nil {
		return a.fail("get", err)
	}

	dir, err := filex.EnsureDir(a.config.DownloadDir)
	if err != nil {
		return a.fail("get", err)
	}
	name := filex.SafeName(a.filenames[mediaRef{id, kind}], fallbackName(id, kind, media.ContentType))
	path, err := filex.WriteUnique(dir, name, media.Content)
	if err != nil {
		return a.fail("get", err)
	}
	a.printf("%s Saved %d bytes to %s\n", color.GreenString("✓"), len(media.Content), color.CyanString(path))
	return nil
}

// fail reports err to the user and returns it. An expired or rejected token
// drops the session so the prompt reflects reality.
func (a *App) fail(op string, err error) error {
	if errors.Is(err, client.ErrUnauthorized) && a.session != nil && op != "login" {
		a.session = nil
		a.printf("%s %s: session is no longer valid, please login again\n", color.RedString("✗"), op)
		return err
	}
	a.printf("%s %s: %v\n", color.RedString("✗"), op, err)
	return err
}

func (a *App) promptFiles() (recording, image *client.File, err error) {
	if recording, err = a.promptFile("Recording file path (empty for none)"); err != nil {
		return nil, nil, err
	}
	if image, err = a.promptFile("Image file path (empty for none)"); err != nil {
		return nil, nil, err
	}
	return recording, image, nil
}

func (a *App) promptFile(prompt string) (*client.File, error) {
	path, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil || path == "" {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &client.File{Name: filepath.Base(path), Content: content}, nil
}

func (a *App) printMessages(ms []client.Message) {
	if len(ms) == 0 {
		a.printf("No messages\n")
		return
	}
	for _, m := range ms {
		a.remember(m)
		a.printf("%s\n", formatMessage(m))
	}
}

func (a *App) remember(m client.Message) {
	if m.ImageFilename != nil {
		a.filenames[mediaRef{m.ID, "image"}] = *m.ImageFilename
	}
	if m.RecordingFilename != nil {
		a.filenames[mediaRef{m.ID, "recording"}] = *m.RecordingFilename
	}
}

func formatMessage(m client.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s %s", m.ID, m.User.LoginName, m.CreatedAt.Local().Format("2006-01-02 15:04"))
	if m.Text != nil {
		fmt.Fprintf(&b, "\n    %s", strings.ReplaceAll(*m.Text, "\n", "\n    "))
	}
	if m.HasRecording {
		fmt.Fprintf(&b, "\n    %s", color.YellowString("[recording: %s]", deref(m.RecordingFilename)))
	}
	if m.HasImage {
		fmt.Fprintf(&b, "\n    %s", color.YellowString("[image: %s]", deref(m.ImageFilename)))
	}
	return b.String()
}

func fallbackName(id int64, kind, contentType string) string {
	name := "message-" + strconv.FormatInt(id, 10) + "-" + kind
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		name += exts[0]
	}
	return name
}

func messageIDArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
