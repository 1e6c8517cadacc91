package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/dmitrijs2005/msgboard/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_HashFromPipe(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, run(nil, strings.NewReader("HappyBirthdayRei1109\n"), &out, &errOut))

	hash := strings.TrimSpace(out.String())
	assert.True(t, cryptox.CompareSecret(hash, []byte("HappyBirthdayRei1109")))
	assert.False(t, cryptox.CompareSecret(hash, []byte("HappyBirthdayRei1109\n")))
}

func TestRun_EmptyPassword(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Error(t, run(nil, strings.NewReader("\n"), &out, &errOut))
	assert.Empty(t, out.String())
}

func TestRun_GenKey(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"-genkey"}, strings.NewReader(""), &out, &errOut))

	key, err := cryptox.DecodeKey(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Len(t, key, cryptox.KeySize)
}

func TestRun_BadFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Error(t, run([]string{"-nope"}, strings.NewReader(""), &out, &errOut))
}

func TestReadSecret_Terminal(t *testing.T) {
	oldTerm, oldRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTerm, oldRead })
	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("typed"), nil }

	var prompt bytes.Buffer
	pw, err := readSecret(os.Stdin, &prompt)
	require.NoError(t, err)
	assert.Equal(t, "typed", string(pw))
	assert.Contains(t, prompt.String(), "Shared password:")
}
