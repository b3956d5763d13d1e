package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when an identifier is not a well-formed UUID.
var ErrInvalidID = errors.New("invalid id format")

// DocumentID identifies a document. Values obtained from ParseDocumentID are
// trusted by every layer below the HTTP boundary.
type DocumentID string

// UserID identifies a user (document owner, grantee or token issuer).
type UserID string

// NewDocumentID returns a fresh random document identifier.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.NewString())
}

// ParseDocumentID validates s and returns it in canonical form.
func ParseDocumentID(s string) (DocumentID, error) {
	id, err := parseUUID(s)
	if err != nil {
		return "", err
	}
	return DocumentID(id), nil
}

// ParseUserID validates s and returns it in canonical form.
func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s)
	if err != nil {
		return "", err
	}
	return UserID(id), nil
}

func parseUUID(s string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidID
	}
	return u.String(), nil
}

func (id DocumentID) String() string { return string(id) }

func (id UserID) String() string { return string(id) }
