package models

// LikeResult is the server's canonical state after a like toggle.
type LikeResult struct {
	Likes int
	Liked bool
}

// PinResult is the server's answer to a pin toggle. Work is set only when
// the server returned the full updated work.
type PinResult struct {
	Pinned bool
	Work   *Work
}

// NewComment is the body of an add-comment call.
type NewComment struct {
	Content     string
	UserID      string
	DisplayName string
}

// Image is one file of an upload.
type Image struct {
	Filename string
	Content  []byte
}

// UploadRequest carries the form fields and images of a new work.
type UploadRequest struct {
	Title          string
	Description    string
	AuthorName     string
	AuthorRealName string
	Images         []Image
}
