package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/artwall/internal/client/models"
	"github.com/dmitrijs2005/artwall/internal/client/services"
	"github.com/dmitrijs2005/artwall/internal/common"
	"github.com/dmitrijs2005/artwall/internal/filex"
)

var errUsage = errors.New("usage")

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

// getSimpleText and getMultiline are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getMultiline  = GetMultiline
)

func (a *App) userID(ctx context.Context) string {
	id, err := a.identity.ResolveUserID(ctx)
	if err != nil {
		a.log.Warn(ctx, "user id unavailable", "error", err)
	}
	return id
}

// List prints one card per work in display order.
func (a *App) List(ctx context.Context, _ []string) error {
	works := a.store.Snapshot()
	if len(works) == 0 {
		fmt.Fprintln(a.out, "No works yet. Try 'refresh' or 'upload'.")
		return nil
	}
	uid := a.userID(ctx)
	for i := range works {
		RenderCard(a.out, &works[i], uid, a.baseURL)
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <id>")
	}
	w, ok := a.store.Get(args[0])
	if !ok {
		return fmt.Errorf("work %s: %w", args[0], common.ErrNotFound)
	}
	uid := a.userID(ctx)
	RenderDetail(a.out, &w, uid, a.baseURL, func(c models.Comment) bool {
		return services.CanDeleteComment(a.session, uid, c)
	})
	return nil
}

func (a *App) Top(ctx context.Context, _ []string) error {
	snap, _ := a.board.Recompute()
	RenderLeaderboard(a.out, snap)
	return nil
}

func (a *App) Refresh(ctx context.Context, _ []string) error {
	if err := a.gallery.Refresh(ctx); err != nil {
		if errors.Is(err, common.ErrNetwork) {
			a.setMode(ModeOffline)
		}
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Loaded %d works.\n", a.store.Len())
	return nil
}

func (a *App) Like(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("like <id>")
	}
	res, err := a.gallery.ToggleLike(ctx, args[0])
	if err != nil {
		return err
	}
	if res.Liked {
		fmt.Fprintf(a.out, "Liked. %d likes now.\n", res.Likes)
	} else {
		fmt.Fprintf(a.out, "Like removed. %d likes now.\n", res.Likes)
	}
	return nil
}

// Comment posts the rest of the line, or prompts when nothing follows the
// id.
func (a *App) Comment(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("comment <id> [text]")
	}
	text := strings.Join(args[1:], " ")
	if text == "" {
		var err error
		text, err = getSimpleText(a.reader, fmt.Sprintf("Comment (max %d characters)", models.MaxCommentRunes), a.out)
		if err != nil {
			return err
		}
	}
	c, err := a.gallery.PostComment(ctx, args[0], text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Comment %s added.\n", c.ID)
	return nil
}

// Uncomment only sends the request when the user may delete the comment.
func (a *App) Uncomment(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("uncomment <id> <comment-id>")
	}
	c, ok := a.store.Comment(args[0], args[1])
	if !ok {
		return fmt.Errorf("comment %s: %w", args[1], common.ErrNotFound)
	}
	if !services.CanDeleteComment(a.session, a.userID(ctx), c) {
		fmt.Fprintln(a.out, "You can only delete your own comments.")
		return nil
	}
	if err := a.gallery.DeleteComment(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Comment deleted.")
	return nil
}

// Upload takes image paths from args or prompts for them, then asks for the
// title and description.
func (a *App) Upload(ctx context.Context, args []string) error {
	paths := args
	if len(paths) == 0 {
		line, err := getSimpleText(a.reader, fmt.Sprintf("Image files (1-%d, separated by spaces)", models.MaxImagesPerWork), a.out)
		if err != nil {
			return err
		}
		paths = strings.Fields(line)
	}
	if len(paths) > models.MaxImagesPerWork {
		return common.Invalid("images", fmt.Sprintf("got %d, at most %d allowed", len(paths), models.MaxImagesPerWork))
	}

	req := models.UploadRequest{}
	for _, p := range paths {
		data, err := readFile(p)
		if errors.Is(err, filex.ErrTooLarge) {
			return common.Invalid("images", fmt.Sprintf("%s exceeds %d MiB", filepath.Base(p), services.MaxImageBytes>>20))
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		req.Images = append(req.Images, models.Image{Filename: filepath.Base(p), Content: data})
	}

	var err error
	if req.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if req.Description, err = getMultiline(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}

	w, err := a.gallery.UploadWork(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %q as %s.\n", w.Title, w.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}
	if !a.isPrivileged() {
		fmt.Fprintln(a.out, "Admin login required.")
		return nil
	}
	if err := a.gallery.DeleteWork(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Work %s deleted.\n", args[0])
	return nil
}

func (a *App) Pin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("pin <id>")
	}
	if !a.isPrivileged() {
		fmt.Fprintln(a.out, "Admin login required.")
		return nil
	}
	pinned, err := a.gallery.TogglePin(ctx, args[0])
	if err != nil {
		return err
	}
	if pinned {
		fmt.Fprintf(a.out, "Work %s pinned.\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Work %s unpinned.\n", args[0])
	}
	return nil
}
