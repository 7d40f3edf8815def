package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/artwall/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrMalformed marks a payload that decoded but lacks required fields.
var ErrMalformed = fmt.Errorf("malformed payload: %w", common.ErrServer)

// WorkDTO is a work as the gallery API encodes it.
//
// Older servers send a single image as main_image_url or image_url instead
// of image_urls.
type WorkDTO struct {
	ID           string       `json:"id" validate:"required"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ImageURLs    []string     `json:"image_urls"`
	MainImageURL string       `json:"main_image_url,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	Likes        *int         `json:"likes" validate:"required,min=0"`
	LikedBy      []string     `json:"liked_by"`
	Comments     []CommentDTO `json:"comments" validate:"dive"`
	CreatedAt    string       `json:"created_at"`
	Username     string       `json:"username"`
	RealName     string       `json:"realName"`
	IsPinned     bool         `json:"is_pinned"`
}

type CommentDTO struct {
	ID        string `json:"id" validate:"required"`
	Content   string `json:"content"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type LikeDTO struct {
	Likes *int  `json:"likes" validate:"required,min=0"`
	Liked *bool `json:"liked" validate:"required"`
}

// PinDTO covers both pin response shapes: a bare flag or the whole work.
type PinDTO struct {
	ID       string `json:"id"`
	IsPinned *bool  `json:"is_pinned" validate:"required"`
}

type LoginDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	Error   string `json:"error"`
}

// ErrorDTO is the body of every non-2xx response.
type ErrorDTO struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Text returns whichever of Error or Message is set.
func (e ErrorDTO) Text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %q", ErrMalformed, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// ToWork validates d and converts it. Comments get WorkID set to the work.
func (d *WorkDTO) ToWork() (Work, error) {
	if err := check(d); err != nil {
		return Work{}, err
	}

	w := Work{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		AuthorName:     d.Username,
		AuthorRealName: d.RealName,
		LikeCount:      *d.Likes,
		IsPinned:       d.IsPinned,
		CreatedAt:      ParseTime(d.CreatedAt),
		LikedBy:        make(map[string]struct{}, len(d.LikedBy)),
	}

	switch {
	case len(d.ImageURLs) > 0:
		w.Images = append([]string(nil), d.ImageURLs...)
	case d.MainImageURL != "":
		w.Images = []string{d.MainImageURL}
	case d.ImageURL != "":
		w.Images = []string{d.ImageURL}
	}
	if n := len(w.Images); n == 0 || n > MaxImagesPerWork {
		return Work{}, fmt.Errorf("%w: work %s has %d images, want 1..%d", ErrMalformed, d.ID, n, MaxImagesPerWork)
	}

	for _, id := range d.LikedBy {
		w.LikedBy[id] = struct{}{}
	}

	w.Comments = make([]Comment, 0, len(d.Comments))
	seen := make(map[string]struct{}, len(d.Comments))
	for i := range d.Comments {
		c := d.Comments[i].ToComment(d.ID)
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		w.Comments = append(w.Comments, c)
	}

	return w, nil
}

// ToComment converts d without validation; callers validate the enclosing
// payload.
func (d *CommentDTO) ToComment(workID string) Comment {
	return Comment{
		ID:                d.ID,
		WorkID:            workID,
		AuthorUserID:      d.UserID,
		AuthorDisplayName: d.Username,
		Content:           d.Content,
		CreatedAt:         ParseTime(d.CreatedAt),
	}
}

// DecodeWorks parses a list-works response body.
func DecodeWorks(data []byte) ([]Work, error) {
	var dtos []WorkDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]Work, 0, len(dtos))
	for i := range dtos {
		w, err := dtos[i].ToWork()
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func DecodeWork(data []byte) (*Work, error) {
	var dto WorkDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	w, err := dto.ToWork()
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func DecodeComment(data []byte, workID string) (*Comment, error) {
	var dto CommentDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := check(&dto); err != nil {
		return nil, err
	}
	c := dto.ToComment(workID)
	return &c, nil
}

func DecodeLike(data []byte) (*LikeResult, error) {
	var dto LikeDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := check(&dto); err != nil {
		return nil, err
	}
	return &LikeResult{Likes: *dto.Likes, Liked: *dto.Liked}, nil
}

// DecodePin accepts either {"is_pinned": bool, ...} or a full work.
func DecodePin(data []byte) (*PinResult, error) {
	var dto PinDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := check(&dto); err != nil {
		return nil, err
	}
	res := &PinResult{Pinned: *dto.IsPinned}
	if dto.ID != "" {
		w, err := DecodeWork(data)
		if err != nil {
			return nil, err
		}
		res.Work = w
	}
	return res, nil
}

// DecodeLogin returns the bearer token. An explicit failure in the body
// maps to common.ErrBadCredentials.
func DecodeLogin(data []byte) (string, error) {
	var dto LoginDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !dto.Success {
		msg := dto.Error
		if msg == "" {
			msg = dto.Message
		}
		return "", fmt.Errorf("%w: %s", common.ErrBadCredentials, msg)
	}
	if strings.TrimSpace(dto.Token) == "" {
		return "", fmt.Errorf("%w: missing token", ErrMalformed)
	}
	return dto.Token, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTime accepts the timestamp formats the API has used. Unparseable or
// empty input yields the zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
