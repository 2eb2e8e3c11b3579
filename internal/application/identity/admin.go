package identity

import (
	"context"
	"strings"

	"github.com/acme/identity-service/internal/domain"
)

func requireAdmin(actorRole string) error {
	if domain.NormalizeRole(actorRole) != string(domain.RoleAdmin) {
		return domain.ErrInsufficientRole(string(domain.RoleAdmin))
	}
	return nil
}

// ListUsers returns up to limit users ordered by creation time.
// limit <= 0 falls back to DefaultListLimit.
func (s *Service) ListUsers(ctx context.Context, actorRole string, limit int) ([]domain.User, error) {
	if err := requireAdmin(actorRole); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.users.List(ctx, limit)
}

// SetUserRole assigns a role to the target user and returns the role
// actually stored. Input is upper-cased; anything outside the known set
// collapses to USER. Demoting the last remaining admin is refused.
func (s *Service) SetUserRole(ctx context.Context, actorID, actorRole, targetID, newRole string) (string, error) {
	if err := requireAdmin(actorRole); err != nil {
		return "", err
	}
	if strings.TrimSpace(targetID) == "" {
		return "", domain.ErrMissingField("user_id")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return "", err
	}

	role := domain.ParseRole(newRole)

	if target.Role == string(domain.RoleAdmin) && role != domain.RoleAdmin {
		admins, err := s.users.CountByRole(ctx, string(domain.RoleAdmin))
		if err != nil {
			return "", err
		}
		if admins <= 1 {
			return "", domain.ErrLastAdminProtected()
		}
	}

	if err := s.users.SetRole(ctx, targetID, string(role)); err != nil {
		return "", err
	}

	s.audit("admin.set_role", map[string]string{
		"actor_id":  actorID,
		"target_id": targetID,
		"new_role":  string(role),
	})
	return string(role), nil
}

// RemoveUser deletes the target account. The last remaining admin
// cannot be removed.
func (s *Service) RemoveUser(ctx context.Context, actorID, actorRole, targetID string) error {
	if err := requireAdmin(actorRole); err != nil {
		return err
	}
	if strings.TrimSpace(targetID) == "" {
		return domain.ErrMissingField("user_id")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.Role == string(domain.RoleAdmin) {
		admins, err := s.users.CountByRole(ctx, string(domain.RoleAdmin))
		if err != nil {
			return err
		}
		if admins <= 1 {
			return domain.ErrLastAdminProtected()
		}
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}
	_ = s.sessions.RevokeAll(ctx, targetID)

	s.audit("admin.remove_user", map[string]string{
		"actor_id":  actorID,
		"target_id": targetID,
	})
	return nil
}

// BanUser is gated like the other admin actions but not implemented yet.
func (s *Service) BanUser(ctx context.Context, actorRole, targetID string) error {
	if err := requireAdmin(actorRole); err != nil {
		return err
	}
	return domain.ErrNotAvailable("ban")
}
