package models

// Identity is the anonymous local user. UserID never changes once created;
// DisplayName and RealName are user-editable.
type Identity struct {
	UserID      string
	DisplayName string
	RealName    string
}
