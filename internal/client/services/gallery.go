// Package services contains the application services of the artwall
// client. GalleryService is the only path by which confirmed server changes
// reach the local store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/artwall/internal/client/client"
	"github.com/dmitrijs2005/artwall/internal/client/models"
	"github.com/dmitrijs2005/artwall/internal/client/store"
	"github.com/dmitrijs2005/artwall/internal/common"
	"github.com/dmitrijs2005/artwall/internal/logging"
	"golang.org/x/sync/singleflight"
)

// GalleryService issues mutating calls and applies the server's answer to
// the store.
//
// Contract, for every mutating method:
//   - exactly one network call is made (none when input fails validation);
//   - on success exactly one store mutation follows, built from the response;
//   - on failure the store is untouched and the error wraps a common sentinel;
//   - an authorization failure on a gated call drops the admin session.
type GalleryService interface {
	Refresh(ctx context.Context) error
	ToggleLike(ctx context.Context, workID string) (*models.LikeResult, error)
	PostComment(ctx context.Context, workID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, workID, commentID string) error
	DeleteWork(ctx context.Context, workID string) error
	TogglePin(ctx context.Context, workID string) (bool, error)
	UploadWork(ctx context.Context, req models.UploadRequest) (*models.Work, error)
	Ping(ctx context.Context) error
}

// Identity is what the gallery needs to know about the local user.
type Identity interface {
	ResolveUserID(ctx context.Context) (string, error)
	ResolveDisplayName(ctx context.Context) (string, error)
	RealName(ctx context.Context) (string, error)
}

// Authorizer is the admin session as seen by the gallery.
type Authorizer interface {
	IsPrivileged() bool
	Downgrade(ctx context.Context, reason error)
}

type galleryService struct {
	client client.Client
	store  *store.Store
	id     Identity
	auth   Authorizer
	log    logging.Logger

	likes singleflight.Group
}

func NewGalleryService(c client.Client, st *store.Store, id Identity, auth Authorizer, log logging.Logger) GalleryService {
	return &galleryService{client: c, store: st, id: id, auth: auth, log: log}
}

func (g *galleryService) fail(ctx context.Context, op, workID string, gated bool, err error) error {
	if gated && errors.Is(err, common.ErrUnauthorized) {
		g.auth.Downgrade(ctx, err)
	}
	if errors.Is(err, common.ErrNotFound) {
		// One 404 is not proof of absence; the next full refresh decides.
		g.log.Info(ctx, "work missing on server", "op", op, "work", workID)
	} else {
		g.log.Warn(ctx, "gallery call failed", "op", op, "work", workID, "error", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (g *galleryService) requirePrivilege(op string) error {
	if !g.auth.IsPrivileged() {
		return fmt.Errorf("%s: admin login required: %w", op, common.ErrUnauthorized)
	}
	return nil
}

func (g *galleryService) Ping(ctx context.Context) error {
	return g.client.Ping(ctx)
}

// Refresh replaces the store contents with the server's list.
func (g *galleryService) Refresh(ctx context.Context) error {
	works, err := g.client.ListWorks(ctx)
	if err != nil {
		return g.fail(ctx, "refresh", "", false, err)
	}
	g.store.LoadAll(works)
	g.log.Debug(ctx, "works refreshed", "count", len(works), "version", g.store.Version())
	return nil
}

// likeTimeout bounds a shared like request once it no longer follows the
// context of the caller that started it.
const likeTimeout = 30 * time.Second

// ToggleLike asks the server to flip the user's like. Concurrent calls for
// the same work share one request and its result. The shared request
// outlives the caller that started it; each caller stops waiting when its
// own ctx is done.
func (g *galleryService) ToggleLike(ctx context.Context, workID string) (*models.LikeResult, error) {
	userID, err := g.id.ResolveUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	ch := g.likes.DoChan(workID+"\x00"+userID, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), likeTimeout)
		defer cancel()

		res, err := g.client.ToggleLike(callCtx, workID, userID)
		if err != nil {
			return nil, g.fail(callCtx, "toggle like", workID, false, err)
		}
		if err := g.store.PatchLike(workID, res.Likes, res.Liked, userID); err != nil {
			g.log.Warn(callCtx, "like confirmed for work absent locally", "work", workID, "error", err)
		}
		return *res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := r.Val.(models.LikeResult)
		return &res, nil
	}
}

// PostComment validates content, posts it under the local identity and
// appends the server's comment.
func (g *galleryService) PostComment(ctx context.Context, workID, content string) (*models.Comment, error) {
	content, err := ValidateComment(content)
	if err != nil {
		return nil, err
	}
	userID, err := g.id.ResolveUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("post comment: %w", err)
	}
	name, err := g.id.ResolveDisplayName(ctx)
	if err != nil {
		return nil, fmt.Errorf("post comment: %w", err)
	}

	c, err := g.client.AddComment(ctx, workID, models.NewComment{Content: content, UserID: userID, DisplayName: name})
	if err != nil {
		return nil, g.fail(ctx, "post comment", workID, false, err)
	}
	if !g.store.AppendComment(workID, *c) {
		g.log.Warn(ctx, "comment confirmed for work absent locally", "work", workID, "comment", c.ID)
	}
	return c, nil
}

// DeleteComment is allowed by the server for the comment's author or an
// admin; see CanDeleteComment.
func (g *galleryService) DeleteComment(ctx context.Context, workID, commentID string) error {
	userID, err := g.id.ResolveUserID(ctx)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if err := g.client.DeleteComment(ctx, workID, commentID, userID); err != nil {
		return g.fail(ctx, "delete comment", workID, true, err)
	}
	g.store.RemoveComment(workID, commentID)
	return nil
}

func (g *galleryService) DeleteWork(ctx context.Context, workID string) error {
	if err := g.requirePrivilege("delete work"); err != nil {
		return err
	}
	if err := g.client.DeleteWork(ctx, workID); err != nil {
		return g.fail(ctx, "delete work", workID, true, err)
	}
	g.store.RemoveWork(workID)
	return nil
}

// TogglePin flips the pin flag on the server, mirrors it locally and then
// refetches the list, since pinning changes the server's ordering. A failed
// refetch is logged; the local order stays stale until the next refresh.
func (g *galleryService) TogglePin(ctx context.Context, workID string) (bool, error) {
	if err := g.requirePrivilege("toggle pin"); err != nil {
		return false, err
	}
	res, err := g.client.TogglePin(ctx, workID)
	if err != nil {
		return false, g.fail(ctx, "toggle pin", workID, true, err)
	}
	g.store.SetPinned(workID, res.Pinned)

	if err := g.Refresh(ctx); err != nil {
		g.log.Warn(ctx, "refresh after pin failed", "work", workID, "error", err)
	}
	return res.Pinned, nil
}

// UploadWork validates req, fills in the author from the local identity
// when not given and prepends the created work.
func (g *galleryService) UploadWork(ctx context.Context, req models.UploadRequest) (*models.Work, error) {
	if err := ValidateUpload(&req); err != nil {
		return nil, err
	}

	if req.AuthorName == "" {
		name, err := g.id.ResolveDisplayName(ctx)
		if err != nil {
			return nil, fmt.Errorf("upload work: %w", err)
		}
		req.AuthorName = name
	}
	if req.AuthorRealName == "" {
		realName, err := g.id.RealName(ctx)
		if err != nil {
			return nil, fmt.Errorf("upload work: %w", err)
		}
		req.AuthorRealName = realName
	}

	w, err := g.client.CreateWork(ctx, req)
	if err != nil {
		return nil, g.fail(ctx, "upload work", "", false, err)
	}
	g.store.Prepend(*w)
	g.log.Info(ctx, "work uploaded", "work", w.ID, "images", len(w.Images))
	return w, nil
}

// CanDeleteComment reports whether the surface should offer deleting c to
// userID.
func CanDeleteComment(auth interface{ IsPrivileged() bool }, userID string, c models.Comment) bool {
	if auth != nil && auth.IsPrivileged() {
		return true
	}
	return userID != "" && c.AuthorUserID == userID
}
