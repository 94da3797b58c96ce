package admin

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	suspended []string
	setEmail  string
	setPw     string
	err       error
}

func (s *stubUsers) Suspend(_ context.Context, id string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.suspended = append(s.suspended, id)
	return &models.User{ID: id, Email: "a@x.com"}, nil
}

func (s *stubUsers) SetPassword(_ context.Context, email, pw string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.setEmail, s.setPw = email, pw
	return &models.User{Email: email}, nil
}

// stubPasswords makes readPassword return the given answers in order.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(answers) {
			return nil, errors.New("no more input")
		}
		i++
		return []byte(answers[i-1]), nil
	}
}

func newAdmin(users *stubUsers, migrate func(context.Context) error) (*Admin, *bytes.Buffer) {
	var out bytes.Buffer
	if migrate == nil {
		migrate = func(context.Context) error { return nil }
	}
	return New(users, migrate, &out), &out
}

func TestRun_Usage(t *testing.T) {
	a, _ := newAdmin(&stubUsers{}, nil)
	for _, args := range [][]string{nil, {"unknown"}, {"suspend"}, {"set-password"}} {
		assert.ErrorIs(t, a.Run(context.Background(), args), ErrUsage, "%v", args)
	}
}

func TestRun_Migrate(t *testing.T) {
	called := false
	a, out := newAdmin(&stubUsers{}, func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, a.Run(context.Background(), []string{"migrate"}))
	assert.True(t, called)
	assert.Contains(t, out.String(), "Migrations applied")
}

func TestRun_MigrateError(t *testing.T) {
	a, _ := newAdmin(&stubUsers{}, func(context.Context) error { return errors.New("boom") })
	assert.EqualError(t, a.Run(context.Background(), []string{"migrate"}), "boom")
}

func TestRun_Suspend(t *testing.T) {
	users := &stubUsers{}
	a, out := newAdmin(users, nil)

	require.NoError(t, a.Run(context.Background(), []string{"suspend", "u-1", "-c", "cfg.json"}))
	assert.Equal(t, []string{"u-1"}, users.suspended)
	assert.Contains(t, out.String(), "User a@x.com suspended")
}

func TestRun_SuspendNotFound(t *testing.T) {
	a, _ := newAdmin(&stubUsers{err: common.NewAppError(common.ErrorNotFound, "User not found")}, nil)
	err := a.Run(context.Background(), []string{"suspend", "missing"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRun_SetPassword(t *testing.T) {
	stubPasswords(t, "NewPass123!", "NewPass123!")
	users := &stubUsers{}
	a, out := newAdmin(users, nil)

	require.NoError(t, a.Run(context.Background(), []string{"set-password", "a@x.com"}))
	assert.Equal(t, "a@x.com", users.setEmail)
	assert.Equal(t, "NewPass123!", users.setPw)
	assert.Contains(t, out.String(), "Password updated for a@x.com")
	assert.NotContains(t, out.String(), "NewPass123!")
}

func TestRun_SetPasswordMismatch(t *testing.T) {
	stubPasswords(t, "NewPass123!", "Other123!")
	users := &stubUsers{}
	a, _ := newAdmin(users, nil)

	assert.ErrorIs(t, a.Run(context.Background(), []string{"set-password", "a@x.com"}), errPasswordMismatch)
	assert.Empty(t, users.setEmail)
}

func TestRun_SetPasswordReadError(t *testing.T) {
	stubPasswords(t)
	a, _ := newAdmin(&stubUsers{}, nil)
	assert.Error(t, a.Run(context.Background(), []string{"set-password", "a@x.com"}))
}
