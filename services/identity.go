package services

import (
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

// Identity is the authenticated caller of an operation. A nil *Identity is an anonymous visitor.
type Identity struct {
	UserID    uuid.UUID
	Username  string
	Owner     bool
	SessionID uuid.UUID
}

// IdentityOf builds the identity of user for the given session.
func IdentityOf(user *models.User, sessionID uuid.UUID) *Identity {
	return &Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Owner:     user.IsOwner,
		SessionID: sessionID,
	}
}

type Role int

const (
	// RoleMember is any logged in account.
	RoleMember Role = iota + 1
	// RoleOwner is the site owner.
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleMember:
		return "member"
	default:
		return "unknown"
	}
}

// Authorize fails unless identity holds role.
// Anonymous callers asking for member access get an Unauthorized error, everything else
// that falls short of the role gets Forbidden.
func Authorize(identity *Identity, role Role) error {
	switch role {
	case RoleOwner:
		if identity == nil || !identity.Owner {
			return errs.NewInsufficientRoleError(role.String())
		}
	case RoleMember:
		if identity == nil {
			return errs.NewMissingTokenError()
		}
	default:
		return errs.NewForbiddenError("unknown role")
	}
	return nil
}
