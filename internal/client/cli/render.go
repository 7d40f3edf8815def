package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/artwall/internal/client/leaderboard"
	"github.com/dmitrijs2005/artwall/internal/client/models"
	"github.com/dmitrijs2005/artwall/internal/common"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Local().Format(timeLayout)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// RenderCard writes the short form of w used by the list command.
func RenderCard(out io.Writer, w *models.Work, userID, baseURL string) {
	pin := ""
	if w.IsPinned {
		pin = " [pinned]"
	}
	fmt.Fprintf(out, "[%s]%s %s\n", w.ID, pin, w.Title)
	fmt.Fprintf(out, "    by %s, %s\n", w.Author(), formatTime(w.CreatedAt))

	liked := ""
	if w.LikedByUser(userID) {
		liked = " (you like this)"
	}
	fmt.Fprintf(out, "    %s%s, %s, %s\n",
		plural(w.LikeCount, "like"), liked, plural(w.CommentCount(), "comment"), plural(len(w.Images), "image"))
	if cover := w.CoverURL(baseURL); cover != "" {
		fmt.Fprintf(out, "    %s\n", cover)
	}
}

// RenderDetail writes the full work with all images and comments.
// canDelete marks the comments the user may remove.
func RenderDetail(out io.Writer, w *models.Work, userID, baseURL string, canDelete func(models.Comment) bool) {
	RenderCard(out, w, userID, baseURL)
	if w.Description != "" {
		fmt.Fprintln(out)
		for _, line := range strings.Split(w.Description, "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
	if urls := w.ImageURLs(baseURL); len(urls) > 1 {
		fmt.Fprintln(out, "\n    Images:")
		for i, u := range urls {
			fmt.Fprintf(out, "    %d/%d %s\n", i+1, len(urls), u)
		}
	}

	fmt.Fprintf(out, "\n    Comments (%d):\n", w.CommentCount())
	if w.CommentCount() == 0 {
		fmt.Fprintln(out, "    none yet")
	}
	for _, c := range w.Comments {
		mark := ""
		if canDelete != nil && canDelete(c) {
			mark = " [x]"
		}
		fmt.Fprintf(out, "    - %s, %s (%s)%s\n", c.AuthorLabel(), formatTime(c.CreatedAt), c.ID, mark)
		fmt.Fprintf(out, "      %s\n", c.Content)
	}
}

func RenderLeaderboard(out io.Writer, snap *leaderboard.Snapshot) {
	if snap == nil || len(snap.Entries) == 0 {
		fmt.Fprintln(out, "Leaderboard is empty.")
		return
	}
	fmt.Fprintf(out, "Leaderboard (updated %s)\n", snap.ComputedAt.Local().Format("15:04:05"))
	for _, e := range snap.Entries {
		fmt.Fprintf(out, "%3d. %s by %s, %s [%s]\n", e.Rank, e.Title, e.Author, plural(e.Likes, "like"), e.ID)
	}
}

// describeError turns a failure into a message for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, common.ErrValidation):
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return ve.Error()
		}
		return err.Error()
	case errors.Is(err, common.ErrBadCredentials):
		return "wrong admin password"
	case errors.Is(err, common.ErrUnauthorized):
		return "not authorized; admin commands are disabled until you log in again"
	case errors.Is(err, common.ErrNotFound):
		return "not found; it may have been deleted, run 'refresh'"
	case errors.Is(err, common.ErrNetwork):
		return "server unreachable, please retry"
	case errors.Is(err, common.ErrServer):
		return "server error, please retry later"
	default:
		return err.Error()
	}
}
