package moderation

import (
	"github.com/eientei/eagle/internal/router"
)

var (
	// ErrGuildUninitialized is returned until gateway reports configured guild
	ErrGuildUninitialized = router.Internal("Guild not initialized")
	// ErrUserNotFound is returned when identifier does not resolve to a member
	ErrUserNotFound = router.NotFound("User not found")
	// ErrRoleNotFound is returned when named role does not exist
	ErrRoleNotFound = router.NotFound("Role not found")
	// ErrBannedRoleNotFound is returned when soft-ban role is not configured in guild
	ErrBannedRoleNotFound = router.NotFound("Banned role not found")
	// ErrTimeoutRoleNotFound is returned when timeout role is not configured in guild
	ErrTimeoutRoleNotFound = router.NotFound("Timeout role not found")
	// ErrSoftBanAdmin is returned when soft-ban targets administrator
	ErrSoftBanAdmin = router.Forbidden("Cannot soft-ban an admin user")
	// ErrTimeoutAdmin is returned when timeout targets administrator
	ErrTimeoutAdmin = router.Forbidden("Cannot timeout an admin user")
	// ErrMissingMessage is returned when post request carries no message
	ErrMissingMessage = router.BadRequest("Missing message in request body")
	// ErrTimeoutPending is returned when overlapping timeouts are rejected
	ErrTimeoutPending = router.Conflict("User already has a pending timeout")
)
