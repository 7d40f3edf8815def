// Package identity owns the anonymous local user: a stable generated user id
// plus the display and real names the user chose.
package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/artwall/internal/client/models"
	"github.com/dmitrijs2005/artwall/internal/client/repositories/prefs"
	"github.com/dmitrijs2005/artwall/internal/common"
	"github.com/google/uuid"
)

// MaxNameRunes bounds display and real names.
const MaxNameRunes = 50

// Provider resolves and persists the local identity. It caches what it has
// read; the repository stays the source of truth across restarts.
type Provider struct {
	repo prefs.Repository

	mu       sync.Mutex
	userID   string
	display  string
	realName *string

	newID   func() string
	newName func() string
}

func NewProvider(repo prefs.Repository) *Provider {
	return &Provider{repo: repo, newID: newUserID, newName: defaultDisplayName}
}

func newUserID() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func defaultDisplayName() string {
	suffix, err := common.MakeRandHexString(2)
	if err != nil {
		suffix = strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	}
	return "User_" + suffix
}

// ResolveUserID returns the persisted user id, creating and storing one on
// first use. Later calls return the same value.
func (p *Provider) ResolveUserID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.userID != "" {
		return p.userID, nil
	}

	v, err := p.repo.Get(ctx, common.PrefUserID)
	if err != nil {
		return "", fmt.Errorf("load user id: %w", err)
	}
	if id := strings.TrimSpace(string(v)); id != "" {
		p.userID = id
		return id, nil
	}

	id := p.newID()
	if err := p.repo.Set(ctx, common.PrefUserID, []byte(id)); err != nil {
		return "", fmt.Errorf("save user id: %w", err)
	}
	p.userID = id
	return id, nil
}

// ResolveDisplayName returns the stored display name, persisting a generated
// default when none exists.
func (p *Provider) ResolveDisplayName(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.display != "" {
		return p.display, nil
	}

	v, err := p.repo.Get(ctx, common.PrefDisplayName)
	if err != nil {
		return "", fmt.Errorf("load display name: %w", err)
	}
	if name := strings.TrimSpace(string(v)); name != "" {
		p.display = name
		return name, nil
	}

	name := p.newName()
	if err := p.repo.Set(ctx, common.PrefDisplayName, []byte(name)); err != nil {
		return "", fmt.Errorf("save display name: %w", err)
	}
	p.display = name
	return name, nil
}

// SetDisplayName stores name trimmed. Empty or whitespace-only names are
// rejected and the previous name is kept.
func (p *Provider) SetDisplayName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.Invalid("display name", "must not be empty")
	}
	if len([]rune(name)) > MaxNameRunes {
		return common.Invalid("display name", fmt.Sprintf("must be at most %d characters", MaxNameRunes))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.repo.Set(ctx, common.PrefDisplayName, []byte(name)); err != nil {
		return fmt.Errorf("save display name: %w", err)
	}
	p.display = name
	return nil
}

// RealName returns the optional real name, "" when unset.
func (p *Provider) RealName(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.realName != nil {
		return *p.realName, nil
	}
	v, err := p.repo.Get(ctx, common.PrefRealName)
	if err != nil {
		return "", fmt.Errorf("load real name: %w", err)
	}
	name := strings.TrimSpace(string(v))
	p.realName = &name
	return name, nil
}

// SetRealName stores name trimmed; an empty name clears it.
func (p *Provider) SetRealName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) > MaxNameRunes {
		return common.Invalid("real name", fmt.Sprintf("must be at most %d characters", MaxNameRunes))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if name == "" {
		err = p.repo.Delete(ctx, common.PrefRealName)
	} else {
		err = p.repo.Set(ctx, common.PrefRealName, []byte(name))
	}
	if err != nil {
		return fmt.Errorf("save real name: %w", err)
	}
	p.realName = &name
	return nil
}

// SetProfile stores both names in one write. The display name follows the
// SetDisplayName rules; an empty real name clears it.
func (p *Provider) SetProfile(ctx context.Context, displayName, realName string) error {
	displayName = strings.TrimSpace(displayName)
	realName = strings.TrimSpace(realName)
	if displayName == "" {
		return common.Invalid("display name", "must not be empty")
	}
	if len([]rune(displayName)) > MaxNameRunes {
		return common.Invalid("display name", fmt.Sprintf("must be at most %d characters", MaxNameRunes))
	}
	if len([]rune(realName)) > MaxNameRunes {
		return common.Invalid("real name", fmt.Sprintf("must be at most %d characters", MaxNameRunes))
	}

	set := map[string][]byte{common.PrefDisplayName: []byte(displayName)}
	var remove []string
	if realName == "" {
		remove = append(remove, common.PrefRealName)
	} else {
		set[common.PrefRealName] = []byte(realName)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.repo.Apply(ctx, set, remove); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	p.display = displayName
	p.realName = &realName
	return nil
}

// Identity resolves all three fields.
func (p *Provider) Identity(ctx context.Context) (models.Identity, error) {
	id, err := p.ResolveUserID(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	name, err := p.ResolveDisplayName(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	realName, err := p.RealName(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{UserID: id, DisplayName: name, RealName: realName}, nil
}
