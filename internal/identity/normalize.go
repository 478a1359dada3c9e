// Package identity maps raw emails to storage-safe identity keys.
package identity

import (
	"strings"

	"github.com/and161185/messenger/internal/model"
)

// unsafe characters for hierarchical document keys and their substitute.
var replacer = strings.NewReplacer(".", "-", "@", "-")

// Normalize returns the identity key for a raw email. Pure and total.
//
// Distinct emails that differ only in "." vs "@" vs "-" at the same position collide
// (e.g. "a.b@c.d" and "a-b@c-d"); this is an accepted limitation of the key format.
func Normalize(rawEmail string) model.IdentityKey {
	return model.IdentityKey(replacer.Replace(rawEmail))
}

// ProfilePictureFileName is the blob name of the user's profile picture.
func ProfilePictureFileName(key model.IdentityKey) string {
	return string(key) + "_profile_picture.png"
}
