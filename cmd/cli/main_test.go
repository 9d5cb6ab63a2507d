package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/auth"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1})

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestParseAsOf(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseAsOf("", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now))

	got, err = parseAsOf("2024-05-30T00:05:00Z", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 5, 30, 0, 5, 0, 0, time.UTC)))

	_, err = parseAsOf("yesterday", now)
	assert.Error(t, err)
}

func TestTokenCmdMintsVerifiableToken(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--id", "kid-1", "--role", "child", "--account", "acc-1", "--secret", "s3cret"})

	require.NoError(t, root.Execute())

	claims, err := auth.NewJWTManager("s3cret", time.Hour).Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "kid-1", claims.Subject)
	assert.Equal(t, domain.RoleChild, claims.Role)
	assert.Equal(t, "acc-1", claims.AccountID)
}

func TestTokenCmdRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "child without account", args: []string{"token", "--id", "kid", "--role", "child", "--secret", "s"}},
		{name: "unknown role", args: []string{"token", "--id", "x", "--role", "admin", "--secret", "s"}},
		{name: "missing id", args: []string{"token", "--secret", "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(tt.args)

			assert.Error(t, root.Execute())
		})
	}
}

func TestRootCmdRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{{"migrate", "up"}, {"migrate", "down"}, {"accrual", "run"}, {"accrual", "runs"}, {"reconcile"}, {"token"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
