package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/msgboard/internal/client/client"
	"github.com/dmitrijs2005/msgboard/internal/client/config"
)

// boardAPI is the part of *client.Client the commands use.
type boardAPI interface {
	Ping(ctx context.Context) error
	Login(ctx context.Context, loginName, password string) (*client.Session, error)
	ListAll(ctx context.Context) ([]client.Message, error)
	ListByOwner(ctx context.Context, s *client.Session, ownerID int64) ([]client.Message, error)
	Post(ctx context.Context, s *client.Session, text *string, recording, image *client.File) (*client.Message, error)
	Edit(ctx context.Context, s *client.Session, messageID int64, newText string) (*client.Message, error)
	Attach(ctx context.Context, s *client.Session, messageID int64, recording, image *client.File) (*client.Message, error)
	Download(ctx context.Context, messageID int64, kind string) (*client.Media, error)
}

type App struct {
	config  *config.Config
	api     boardAPI
	session *client.Session
	reader  *bufio.Reader
	out     io.Writer

	// filenames remembers attachment names from the last listing so
	// downloads keep the uploader's filename.
	filenames map[mediaRef]string
}

type mediaRef struct {
	messageID int64
	kind      string
}

func NewApp(c *config.Config) *App {
	return &App{
		config:    c,
		api:       client.New(c.ServerURL, c.RequestTimeout),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		filenames: map[mediaRef]string{},
	}
}

func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "msgboard CLI (type 'help' for commands)")
	if err := a.api.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "warning: %s is not reachable: %v\n", a.config.ServerURL, err)
	}
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) status() string {
	if a.session == nil {
		return "guest"
	}
	return a.session.User.LoginName
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
