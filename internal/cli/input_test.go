package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPassword replaces the terminal reader for the duration of a test.
func stubPassword(t *testing.T, pw []byte, err error) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		return pw, err
	}
}

func TestGetPassword(t *testing.T) {
	stubPassword(t, []byte("rescue"), nil)

	var out bytes.Buffer
	got, err := GetPassword(&out, "Key: ")
	require.NoError(t, err)
	assert.Equal(t, []byte("rescue"), got)
	assert.Equal(t, "Key: \n", out.String())
}

func TestGetPassword_Error(t *testing.T) {
	stubPassword(t, nil, errors.New("boom"))

	var out bytes.Buffer
	_, err := GetPassword(&out, "Key: ")
	require.EqualError(t, err, "boom")
}
