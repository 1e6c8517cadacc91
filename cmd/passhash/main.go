// Command passhash prints configuration secrets for the board server.
//
// Without flags it reads the shared password (without echo when stdin is a
// terminal) and prints its bcrypt hash for MSGBOARD_SHARED_PASSWORD_HASH.
// With -genkey it prints a random base64 key usable as MSGBOARD_MEDIA_KEY
// or MSGBOARD_SECRET_KEY.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/cryptox"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("passhash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	genKey := fs.Bool("genkey", false, "print a random base64 AES key instead of a password hash")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *genKey {
		key, err := cryptox.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, cryptox.EncodeKey(key))
		return nil
	}

	password, err := readSecret(stdin, stderr)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if len(password) == 0 {
		return errors.New("empty password")
	}

	hash, err := cryptox.HashSecret(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

func readSecret(stdin io.Reader, prompt io.Writer) ([]byte, error) {
	if f, ok := stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Shared password: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		return pw, err
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
