package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("CAPITAL_TEST_DIR", "/var/capital")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde only", in: "~", want: home},
		{name: "tilde prefix", in: "~/data/capital.db", want: filepath.Join(home, "data/capital.db")},
		{name: "env var", in: "$CAPITAL_TEST_DIR/capital.db", want: "/var/capital/capital.db"},
		{name: "absolute", in: "/tmp/capital.db", want: "/tmp/capital.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local/share/capital/capital.db"), DatabasePath(""))
	assert.Equal(t, "/tmp/x.db", DatabasePath("/tmp/x.db"))
}
