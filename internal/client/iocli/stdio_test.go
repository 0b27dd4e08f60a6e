package iocli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdio_Output(t *testing.T) {
	var out bytes.Buffer
	s := New(strings.NewReader(""), &out)

	s.Println("hello", "world")
	s.Printf("test %d %s\n", 1, "abc")
	_, err := s.Write([]byte("raw"))
	require.NoError(t, err)

	assert.Equal(t, "hello world\ntest 1 abc\nraw", out.String())
}

func TestStdio_ReadInput(t *testing.T) {
	var out bytes.Buffer
	s := New(strings.NewReader("  ada@example.com \nsecond\nlast"), &out)

	got, err := s.ReadInput("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got)
	assert.Equal(t, "Email: ", out.String())

	// Буфер не теряет следующие строки между вызовами
	got, err = s.ReadInput("")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	// Последняя строка без перевода строки
	got, err = s.ReadInput("")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = s.ReadInput("")
	assert.ErrorIs(t, err, io.EOF)
}

func TestStdio_ReadPassword_NotTerminal(t *testing.T) {
	var out bytes.Buffer
	s := New(strings.NewReader("secret\n"), &out)

	got, err := s.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)
	assert.Equal(t, "Password: ", out.String())
}

func TestStdio_ImplementsIO(t *testing.T) {
	var _ IO = NewStdio()
}
