package services

import (
	"strings"

	"github.com/peerconnect/api/internal/app/models"
)

// MentionsUser reports whether content contains "@name", ignoring case.
// Plain substring matching means "@Al" inside "@Alice" also counts.
func MentionsUser(content, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return strings.Contains(strings.ToLower(content), strings.ToLower("@"+name))
}

// FindMentioned returns the candidates mentioned in content, in candidate
// order. The sender is never returned.
func FindMentioned(content string, senderID int64, candidates []*models.User) []*models.User {
	var out []*models.User
	for _, u := range candidates {
		if u == nil || u.ID == senderID {
			continue
		}
		if MentionsUser(content, u.Name) {
			out = append(out, u)
		}
	}
	return out
}
