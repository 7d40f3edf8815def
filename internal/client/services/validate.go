package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/artwall/internal/client/models"
	"github.com/dmitrijs2005/artwall/internal/common"
	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes is the per-image upload limit the server enforces.
const MaxImageBytes = 16 << 20

// AllowedImageTypes are matched against the sniffed content, not the file
// name.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ValidateComment trims content and checks it is non-empty and at most
// models.MaxCommentRunes long.
func ValidateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", common.Invalid("comment", "must not be empty")
	}
	if n := utf8.RuneCountInString(content); n > models.MaxCommentRunes {
		return "", common.Invalid("comment", fmt.Sprintf("is %d characters, limit is %d", n, models.MaxCommentRunes))
	}
	return content, nil
}

// ValidateUpload checks the request before anything is sent. It trims the
// text fields and gives every image a file name whose extension matches its
// sniffed type.
func ValidateUpload(req *models.UploadRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	req.AuthorRealName = strings.TrimSpace(req.AuthorRealName)

	if req.Title == "" {
		return common.Invalid("title", "must not be empty")
	}
	switch n := len(req.Images); {
	case n == 0:
		return common.Invalid("images", "at least one image is required")
	case n > models.MaxImagesPerWork:
		return common.Invalid("images", fmt.Sprintf("got %d, at most %d allowed", n, models.MaxImagesPerWork))
	}

	for i := range req.Images {
		img := &req.Images[i]
		name := img.Filename
		if name == "" {
			name = fmt.Sprintf("image %d", i+1)
		}
		if len(img.Content) == 0 {
			return common.Invalid(name, "is empty")
		}
		if len(img.Content) > MaxImageBytes {
			return common.Invalid(name, fmt.Sprintf("exceeds %d MiB", MaxImageBytes>>20))
		}

		mt := mimetype.Detect(img.Content)
		if !mimetype.EqualsAny(mt.String(), AllowedImageTypes...) {
			return common.Invalid(name, fmt.Sprintf("has unsupported type %s", mt.String()))
		}
		img.Filename = normalizeName(img.Filename, i, mt.Extension())
	}
	return nil
}

// normalizeName keeps a name whose extension already fits the content,
// otherwise it swaps in ext.
func normalizeName(name string, idx int, ext string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || name == "" {
		base = fmt.Sprintf("image_%d", idx)
	}
	cur := strings.ToLower(filepath.Ext(base))
	if cur == ext || (ext == ".jpg" && cur == ".jpeg") {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
