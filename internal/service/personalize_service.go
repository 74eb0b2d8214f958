package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"orgnotify/internal/models"
	"orgnotify/internal/repository"
)

// placeholderPattern matches a brace, one or more letters/underscores and
// a closing brace, case-insensitively.
var placeholderPattern = regexp.MustCompile(`(?i)\{[a-z_]+\}`)

// PersonalizeService resolves placeholder tokens in a message body against
// recipient attributes.
type PersonalizeService struct {
	directoryRepo repository.DirectoryRepository
}

// NewPersonalizeService creates a new personalization service
func NewPersonalizeService(directoryRepo repository.DirectoryRepository) *PersonalizeService {
	return &PersonalizeService{directoryRepo: directoryRepo}
}

// HasPlaceholders reports whether a body contains any placeholder token
func HasPlaceholders(body string) bool {
	return placeholderPattern.MatchString(body)
}

// Resolve produces the personalized body for every recipient, keyed by
// recipient id. A body with no placeholders short-circuits: every
// recipient gets the literal body and the directory is never consulted.
// Placeholders with no known substitution are left verbatim.
//
// extra carries trigger-only substitutions (amount, currency, category,
// date) applied to every recipient of the send; nil for user sends.
func (s *PersonalizeService) Resolve(ctx context.Context, tenantID, body string, recipients []*models.Recipient, extra map[string]string) (map[int64]string, error) {
	resolved := make(map[int64]string, len(recipients))

	if !HasPlaceholders(body) {
		for _, recipient := range recipients {
			resolved[recipient.ID] = body
		}
		return resolved, nil
	}

	members, err := s.fetchMembers(ctx, tenantID, recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directory records: %w", err)
	}

	for _, recipient := range recipients {
		vars := make(map[string]string, len(extra)+3)
		for k, v := range extra {
			vars[strings.ToLower(k)] = v
		}

		if member := s.memberFor(recipient, members); member != nil {
			if member.FirstName != nil {
				vars["first_name"] = *member.FirstName
			}
			if member.LastName != nil {
				vars["last_name"] = *member.LastName
			}
			vars["phone"] = member.Phone
		} else {
			first, last := splitName(recipient.DisplayName())
			vars["first_name"] = first
			vars["last_name"] = last
			vars["phone"] = recipient.Phone
		}

		resolved[recipient.ID] = substitute(body, vars)
	}

	return resolved, nil
}

// fetchMembers batch-fetches the directory records of every recipient that
// carries a structurally valid member identifier. One lookup per send, not
// per recipient.
func (s *PersonalizeService) fetchMembers(ctx context.Context, tenantID string, recipients []*models.Recipient) (map[string]*models.Member, error) {
	ids := []string{}
	seen := map[string]bool{}
	for _, recipient := range recipients {
		id := validMemberID(recipient.MemberID)
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]*models.Member{}, nil
	}

	members, err := s.directoryRepo.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Member, len(members))
	for _, member := range members {
		byID[member.ID] = member
	}
	return byID, nil
}

func (s *PersonalizeService) memberFor(recipient *models.Recipient, members map[string]*models.Member) *models.Member {
	id := validMemberID(recipient.MemberID)
	if id == "" {
		return nil
	}
	return members[id]
}

// validMemberID returns the candidate identifier when it passes the
// structural check (fixed-length hyphenated hexadecimal), "" otherwise.
// An invalid-looking identifier is treated as no identifier rather than
// a lookup error.
func validMemberID(candidate *string) string {
	if candidate == nil {
		return ""
	}
	id := strings.TrimSpace(*candidate)
	if len(id) != 36 {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// substitute replaces every known placeholder and preserves unknown ones
// verbatim. Lookup is case-insensitive on the token name.
func substitute(body string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(token string) string {
		name := strings.ToLower(strings.Trim(token, "{}"))
		if value, ok := vars[name]; ok {
			return value
		}
		return token
	})
}

// splitName splits a free-text display name on whitespace into first and
// last name substitutions.
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
