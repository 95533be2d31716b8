package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText_TrimsInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  admin  \n"))
	var out bytes.Buffer

	got, err := GetSimpleText(reader, "Enter username", &out)
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
	assert.Contains(t, out.String(), "Enter username")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("admin"))
	var out bytes.Buffer

	got, err := GetSimpleText(reader, "Enter username", &out)
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
}

func TestGetSimpleText_EmptyEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))
	var out bytes.Buffer

	_, err := GetSimpleText(reader, "Enter username", &out)
	require.Error(t, err)
}

func TestGetPassword_UsesTerminalReader(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()

	readPassword = func(fd int) ([]byte, error) {
		return []byte("lotus2024"), nil
	}

	var out bytes.Buffer
	pw, err := GetPassword("Enter password: ", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("lotus2024"), pw)
	assert.Contains(t, out.String(), "Enter password: ")
}

func TestGetPassword_ReaderError(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()

	readPassword = func(fd int) ([]byte, error) {
		return nil, errors.New("no terminal")
	}

	var out bytes.Buffer
	_, err := GetPassword("Enter password: ", &out)
	require.Error(t, err)
}
