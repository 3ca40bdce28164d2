// Package policy decides who may do what with a message. The only
// relations that matter are "is the sender" and "is the recipient".
package policy

import "github.com/aussiebroadwan/whisper/internal/whisper/domain"

// MarkReadDenied is reported when someone other than the recipient tries to
// mark a message as read.
const MarkReadDenied = "only the recipient can mark a message as read"

// CanRead reports whether identity is one of the two parties of m.
func CanRead(identity string, m domain.Message) bool {
	return identity != "" && (identity == m.FromUsername || identity == m.ToUsername)
}

// CanMarkRead reports whether identity is the recipient of m.
func CanMarkRead(identity string, m domain.Message) bool {
	return identity != "" && identity == m.ToUsername
}

// CanSend reports whether identity may send to recipient. Any
// authenticated user may message anyone, themselves included.
func CanSend(identity, recipient string) bool {
	return identity != "" && recipient != ""
}

// AuthorizeRead returns the error a reader without access gets. It is the
// same not-found error a missing message produces, so outsiders cannot probe
// which ids exist.
func AuthorizeRead(identity string, m domain.Message) error {
	if CanRead(identity, m) {
		return nil
	}
	return MessageNotFound(m.ID)
}

// AuthorizeMarkRead returns a forbidden error for anyone but the recipient.
func AuthorizeMarkRead(identity string, m domain.Message) error {
	if CanMarkRead(identity, m) {
		return nil
	}
	return domain.Forbidden(MarkReadDenied)
}

// MessageNotFound is the error for an unknown or invisible message id.
func MessageNotFound(id int64) error {
	return domain.NotFoundf("no such message: %d", id)
}

// UserNotFound is the error for an unknown username.
func UserNotFound(username string) error {
	return domain.NotFoundf("no such user: %s", username)
}
