package provisioncmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()

	c := Command()
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)
	return c.Execute()
}

func standardArgs(extra ...string) []string {
	args := []string{
		"--db-name", "acme_site",
		"--admin-email", "admin@example.com",
		"--company", "Acme Rockets",
		"--industry", "Technology",
	}
	return append(args, extra...)
}

func TestProvisionRequiresCoreFlags(t *testing.T) {
	err := runCommand(t)
	require.Error(t, err)
	require.Contains(t, err.Error(), "required flag(s)")
}

func TestProvisionRejectsUnknownMode(t *testing.T) {
	err := runCommand(t, standardArgs("--mode", "sideways")...)
	require.ErrorContains(t, err, `invalid --mode "sideways"`)
}

func TestProvisionRejectsBadEmail(t *testing.T) {
	err := runCommand(t,
		"--db-name", "acme_site",
		"--admin-email", "not-an-email",
		"--company", "Acme Rockets",
		"--industry", "Technology",
	)
	require.EqualError(t, err, "enter a valid --admin-email")
}

func TestProvisionRejectsShortPassword(t *testing.T) {
	err := runCommand(t, standardArgs("--admin-password", "short1")...)
	require.EqualError(t, err, "admin password must be at least 8 characters")
}

func TestProvisionRejectsBadDBName(t *testing.T) {
	err := runCommand(t,
		"--db-name", "bad name!",
		"--admin-email", "admin@example.com",
		"--admin-password", "hunter2hunter2",
		"--company", "Acme Rockets",
		"--industry", "Technology",
	)
	require.ErrorContains(t, err, "db_name: Only letters, numbers, and underscore allowed.")
}

func TestProvisionCustomModeFieldErrors(t *testing.T) {
	err := runCommand(t, standardArgs(
		"--mode", "custom",
		"--admin-password", "hunter2hunter2",
		"--ssl",
	)...)
	require.ErrorContains(t, err, "invalid database settings:")
	require.ErrorContains(t, err, "host: This field is required.")
	require.ErrorContains(t, err, "user: This field is required.")
	require.ErrorContains(t, err, "ssl_cert: When SSL is on, upload a .pem file.")
}

func TestProvisionPromptMismatch(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	calls := 0
	readPassword = func(int) ([]byte, error) {
		calls++
		if calls == 1 {
			return []byte("hunter2hunter2"), nil
		}
		return []byte("different"), nil
	}

	err := runCommand(t, standardArgs()...)
	require.EqualError(t, err, "passwords do not match")
	require.Equal(t, 2, calls)
}

func TestProvisionPromptReadError(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}

	err := runCommand(t, standardArgs()...)
	require.ErrorContains(t, err, "read password: boom")
}
