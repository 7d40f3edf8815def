// Package models defines the client-side entities mirrored from the gallery
// API and the typed results of its mutating calls.
package models

import (
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/artwall/internal/common"
)

// MaxImagesPerWork bounds Work.Images.
const MaxImagesPerWork = 5

// MaxCommentRunes bounds Comment.Content, counted in code points.
const MaxCommentRunes = 500

// Work is an uploaded piece with its likes and comments.
//
// LikeCount always comes from the server; it is never derived from LikedBy.
type Work struct {
	ID             string
	Title          string
	Description    string
	Images         []string
	AuthorName     string
	AuthorRealName string
	LikeCount      int
	LikedBy        map[string]struct{}
	IsPinned       bool
	CreatedAt      time.Time
	Comments       []Comment
}

// LikedByUser reports whether userID is in the visible liker set.
func (w *Work) LikedByUser(userID string) bool {
	_, ok := w.LikedBy[userID]
	return ok
}

func (w *Work) CommentCount() int {
	return len(w.Comments)
}

// Author returns the author line shown on cards and in the leaderboard.
func (w *Work) Author() string {
	name := w.AuthorName
	if name == "" {
		name = "Anonymous"
	}
	if w.AuthorRealName != "" {
		return name + " (" + w.AuthorRealName + ")"
	}
	return name
}

// ImageURLs returns Images resolved against base. Absolute URLs are kept.
func (w *Work) ImageURLs(base string) []string {
	out := make([]string, 0, len(w.Images))
	for _, img := range w.Images {
		out = append(out, ResolveURL(base, img))
	}
	return out
}

// CoverURL is the first image resolved against base, or "" for a work
// without images.
func (w *Work) CoverURL(base string) string {
	if len(w.Images) == 0 {
		return ""
	}
	return ResolveURL(base, w.Images[0])
}

// Clone returns a deep copy; the result shares no slices or maps with w.
func (w Work) Clone() Work {
	c := w
	c.Images = append([]string(nil), w.Images...)
	c.LikedBy = make(map[string]struct{}, len(w.LikedBy))
	for id := range w.LikedBy {
		c.LikedBy[id] = struct{}{}
	}
	if w.Comments != nil {
		c.Comments = append([]Comment(nil), w.Comments...)
	}
	return c
}

// Comment belongs to exactly one Work, referenced by WorkID.
type Comment struct {
	ID                string
	WorkID            string
	AuthorUserID      string
	AuthorDisplayName string
	Content           string
	CreatedAt         time.Time
}

// AuthorLabel is the display name, or a masked form of the author's user id
// when no name was given.
func (c *Comment) AuthorLabel() string {
	if strings.TrimSpace(c.AuthorDisplayName) != "" {
		return c.AuthorDisplayName
	}
	return "User …" + common.TailRunes(c.AuthorUserID, 6)
}

// ResolveURL joins a server-relative path like "/api/uploads/x.png" with base.
func ResolveURL(base, ref string) string {
	if ref == "" || base == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
