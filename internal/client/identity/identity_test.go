package identity

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/dmitrijs2005/artwall/internal/client/repositories/prefs"
	"github.com/dmitrijs2005/artwall/internal/common"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- fakes ----

type memPrefs struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMemPrefs() *memPrefs { return &memPrefs{data: map[string][]byte{}} }

func (m *memPrefs) Get(_ context.Context, k string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[k], nil
}
func (m *memPrefs) Set(_ context.Context, k string, v []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[k] = append([]byte(nil), v...)
	return nil
}
func (m *memPrefs) Delete(_ context.Context, k string) error { delete(m.data, k); return nil }
func (m *memPrefs) Apply(_ context.Context, set map[string][]byte, remove []string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	for k, v := range set {
		m.data[k] = append([]byte(nil), v...)
	}
	for _, k := range remove {
		delete(m.data, k)
	}
	return nil
}
func (m *memPrefs) List(context.Context) (map[string][]byte, error) {
	return m.data, nil
}
func (m *memPrefs) Clear(context.Context) error { m.data = map[string][]byte{}; return nil }

// ---- tests ----

func TestResolveUserID_GeneratesOnceAndPersists(t *testing.T) {
	ctx := context.Background()
	repo := newMemPrefs()
	p := NewProvider(repo)

	id, err := p.ResolveUserID(ctx)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^user_[0-9a-f]{16}$`), id)
	require.Equal(t, id, string(repo.data[common.PrefUserID]))

	again, err := p.ResolveUserID(ctx)
	require.NoError(t, err)
	require.Equal(t, id, again)
	require.Equal(t, 1, repo.sets)
}

func TestResolveUserID_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file:identity_restart?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE prefs (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	first, err := NewProvider(prefs.NewSQLiteRepository(db)).ResolveUserID(ctx)
	require.NoError(t, err)

	second, err := NewProvider(prefs.NewSQLiteRepository(db)).ResolveUserID(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolveUserID_StorageFailure(t *testing.T) {
	repo := newMemPrefs()
	repo.setErr = errors.New("disk full")
	_, err := NewProvider(repo).ResolveUserID(context.Background())
	require.ErrorContains(t, err, "disk full")
}

func TestResolveDisplayName_Default(t *testing.T) {
	ctx := context.Background()
	repo := newMemPrefs()
	p := NewProvider(repo)

	name, err := p.ResolveDisplayName(ctx)
	require.NoError(t, err)
	require.Regexp(t, `^User_[0-9a-f]{4}$`, name)
	require.Equal(t, name, string(repo.data[common.PrefDisplayName]))
}

func TestSetDisplayName(t *testing.T) {
	ctx := context.Background()
	repo := newMemPrefs()
	p := NewProvider(repo)

	require.NoError(t, p.SetDisplayName(ctx, "  Ann  "))
	name, err := p.ResolveDisplayName(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ann", name)

	for _, bad := range []string{"", "   ", "\t\n"} {
		err := p.SetDisplayName(ctx, bad)
		require.ErrorIs(t, err, common.ErrValidation)
	}
	name, err = p.ResolveDisplayName(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ann", name, "rejected names keep the previous one")

	long := make([]rune, MaxNameRunes+1)
	for i := range long {
		long[i] = 'x'
	}
	require.ErrorIs(t, p.SetDisplayName(ctx, string(long)), common.ErrValidation)
}

func TestRealName(t *testing.T) {
	ctx := context.Background()
	repo := newMemPrefs()
	p := NewProvider(repo)

	got, err := p.RealName(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, p.SetRealName(ctx, "Robert"))
	got, err = p.RealName(ctx)
	require.NoError(t, err)
	require.Equal(t, "Robert", got)

	require.NoError(t, p.SetRealName(ctx, " "))
	_, ok := repo.data[common.PrefRealName]
	require.False(t, ok)
}

func TestIdentity(t *testing.T) {
	repo := newMemPrefs()
	repo.data[common.PrefUserID] = []byte("user_fixed")
	repo.data[common.PrefDisplayName] = []byte("Zed")

	id, err := NewProvider(repo).Identity(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user_fixed", id.UserID)
	require.Equal(t, "Zed", id.DisplayName)
	require.Empty(t, id.RealName)
}

func TestSetProfile_WritesBothNamesAtOnce(t *testing.T) {
	ctx := context.Background()
	repo := newMemPrefs()
	p := NewProvider(repo)

	require.NoError(t, p.SetProfile(ctx, "  Kai  ", " Kai Tan "))
	require.Equal(t, 1, repo.sets)
	require.Equal(t, "Kai", string(repo.data[common.PrefDisplayName]))
	require.Equal(t, "Kai Tan", string(repo.data[common.PrefRealName]))

	id, err := p.Identity(ctx)
	require.NoError(t, err)
	require.Equal(t, "Kai", id.DisplayName)
	require.Equal(t, "Kai Tan", id.RealName)

	require.NoError(t, p.SetProfile(ctx, "Kai", ""))
	_, ok := repo.data[common.PrefRealName]
	require.False(t, ok)
	realName, err := p.RealName(ctx)
	require.NoError(t, err)
	require.Empty(t, realName)
}

func TestSetProfile_ValidationKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	repo := newMemPrefs()
	p := NewProvider(repo)
	require.NoError(t, p.SetProfile(ctx, "Kai", "Kai Tan"))

	require.ErrorIs(t, p.SetProfile(ctx, "   ", "x"), common.ErrValidation)
	require.ErrorIs(t, p.SetProfile(ctx, "Kai", strings.Repeat("é", MaxNameRunes+1)), common.ErrValidation)

	repo.setErr = errors.New("disk full")
	require.ErrorContains(t, p.SetProfile(ctx, "Other", ""), "save profile")
	repo.setErr = nil

	id, err := p.Identity(ctx)
	require.NoError(t, err)
	require.Equal(t, "Kai", id.DisplayName)
	require.Equal(t, "Kai Tan", id.RealName)
}
