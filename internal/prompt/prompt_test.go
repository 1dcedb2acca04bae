package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffirmative(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"Y", true},
		{"Yes", true},
		{"Y\n", true},
		{"Yep  ", true},
		{"Y\r\n", true},
		{"  Yes", false},
		{"\tY", false},
		{"y", false},
		{"yes", false},
		{"n", false},
		{"N", false},
		{"", false},
		{"\n", false},
		{"no, Y", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, Affirmative(tt.answer))
		})
	}
}

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"accept", "Y\n", true},
		{"accept without newline", "Yes", true},
		{"lowercase declines", "y\n", false},
		{"leading space declines", "  Yes\n", false},
		{"empty line declines", "\n", false},
		{"closed input declines", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := &Terminal{In: strings.NewReader(tt.input), Out: &out}

			got, err := term.Confirm("Are you sure? (Y/n)")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(out.String(), "Are you sure? (Y/n) "))
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestTerminal_ReadError(t *testing.T) {
	term := &Terminal{In: failingReader{}, Out: &bytes.Buffer{}}
	ok, err := term.Confirm("?")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "tty gone")
}

func TestStatic(t *testing.T) {
	ok, err := Static(true).Confirm("anything")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Static(false).Confirm("anything")
	require.NoError(t, err)
	assert.False(t, ok)
}
