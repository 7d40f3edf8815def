package client

import (
	"context"

	"github.com/dmitrijs2005/artwall/internal/client/models"
)

// Client is the gallery API contract. Every method returns an error that
// wraps one of the common sentinel errors.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	ListWorks(ctx context.Context) ([]models.Work, error)
	CreateWork(ctx context.Context, req models.UploadRequest) (*models.Work, error)
	DeleteWork(ctx context.Context, workID string) error
	ToggleLike(ctx context.Context, workID, userID string) (*models.LikeResult, error)
	TogglePin(ctx context.Context, workID string) (*models.PinResult, error)
	AddComment(ctx context.Context, workID string, c models.NewComment) (*models.Comment, error)
	DeleteComment(ctx context.Context, workID, commentID, userID string) error
	AdminLogin(ctx context.Context, password []byte) (string, error)
}

// TokenSource supplies the bearer token attached to gated calls. An empty
// token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }
