package validators

import (
	"strings"

	apperrors "worktracker.com/worktracker/internal/errors"
)

// UserAllowlist is the fixed set of user ids the service accepts. An empty list
// accepts everyone.
type UserAllowlist map[string]struct{}

func NewUserAllowlist(users []string) UserAllowlist {
	allowed := make(UserAllowlist, len(users))
	for _, u := range users {
		if u = strings.TrimSpace(u); u != "" {
			allowed[u] = struct{}{}
		}
	}
	return allowed
}

func (a UserAllowlist) Check(userID string) error {
	if len(a) == 0 {
		return nil
	}
	if _, ok := a[userID]; !ok {
		return apperrors.ErrUserNotAllowed.WithMessage("user " + userID + " is not allowed")
	}
	return nil
}
