package moderate

import (
	"net/http"
	"strconv"

	"github.com/eientei/eagle/internal/moderation"
	"github.com/eientei/eagle/internal/router"
	"github.com/eientei/eagle/internal/scheduler"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func success(ctx *router.Context, message string, err error) error {
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, &response{
		Status:  "success",
		Message: message,
	})
}

func limit(ctx *router.Context) (int, error) {
	raw := ctx.Request.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxLimit {
		return 0, router.BadRequest("Invalid limit %q", raw)
	}

	return n, nil
}

func (mod *module) handleKick(ctx *router.Context) error {
	msg, err := mod.service.Kick(ctx.Context(), ctx.Param("userId"), ctx.RemoteAddr())

	return success(ctx, msg, err)
}

func (mod *module) handleGetRoles(ctx *router.Context) error {
	roles, err := mod.service.Roles(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"roles": roles,
	})
}

func (mod *module) handleAddRole(ctx *router.Context) error {
	msg, err := mod.service.AddRole(ctx.Context(), ctx.Param("userId"), ctx.Param("roleName"), ctx.RemoteAddr())

	return success(ctx, msg, err)
}

func (mod *module) handleDelRole(ctx *router.Context) error {
	msg, err := mod.service.RemoveRole(ctx.Context(), ctx.Param("userId"), ctx.Param("roleName"), ctx.RemoteAddr())

	return success(ctx, msg, err)
}

func (mod *module) handlePostMessage(ctx *router.Context) error {
	req := &moderation.PostMessage{}

	if ctx.Bind(req) != nil {
		req = nil
	}

	msg, err := mod.service.PostMessage(ctx.Context(), req)

	return success(ctx, msg, err)
}

func (mod *module) handleSoftBan(ctx *router.Context) error {
	msg, err := mod.service.SoftBan(ctx.Context(), ctx.Param("identifier"), ctx.RemoteAddr())

	return success(ctx, msg, err)
}

func (mod *module) handleTimeout(ctx *router.Context) error {
	msg, err := mod.service.Timeout(ctx.Context(), ctx.Param("identifier"), ctx.Param("durationSeconds"), ctx.RemoteAddr())

	return success(ctx, msg, err)
}

func (mod *module) handleTimeouts(ctx *router.Context) error {
	jobs := mod.service.Pending()
	if jobs == nil {
		jobs = []scheduler.Job{}
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"jobs": jobs,
	})
}

func (mod *module) handleHistory(ctx *router.Context) error {
	if mod.config.Journal == nil {
		return router.NewError(http.StatusServiceUnavailable, "Journal not configured")
	}

	n, err := limit(ctx)
	if err != nil {
		return err
	}

	entries, err := mod.config.Journal.JournalRecent(scope, journalName, int64(n))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (mod *module) handleAudit(ctx *router.Context) error {
	n, err := limit(ctx)
	if err != nil {
		return err
	}

	entries, err := mod.config.Audit.Recent(ctx.Context(), n)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}
