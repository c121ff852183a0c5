package permission

import (
	"context"
	"log/slog"
	"net/http"
)

// Actor is the authenticated holder of a request.
type Actor interface {
	Holder
	ActorID() int64
}

// ActorFunc extracts the authenticated actor from a request context.
type ActorFunc func(ctx context.Context) (Actor, bool)

type RBACAuthorization struct {
	resolver *Resolver
	actor    ActorFunc
	logger   *slog.Logger
}

func NewRBACAuthorization(resolver *Resolver, actor ActorFunc, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		resolver: resolver,
		actor:    actor,
		logger:   logger,
	}
}

func (ra *RBACAuthorization) guard(name string, allowed func(Actor) bool, attrs ...any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ra.actor(r.Context())
			if !ok || actor == nil {
				ra.logger.WarnContext(r.Context(), "authorization check failed: user not found in context", "check", name)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !allowed(actor) {
				args := append([]any{"check", name, "user_id", actor.ActorID()}, attrs...)
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions", args...)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Require allows the request when the actor holds action on permissionID.
func (ra *RBACAuthorization) Require(permissionID string, action Action) func(http.Handler) http.Handler {
	return ra.guard("permission", func(a Actor) bool {
		return ra.resolver.HasPermission(a, permissionID, action)
	}, "permission", permissionID, "action", action)
}

// RequireAny allows the request when at least one requirement holds.
func (ra *RBACAuthorization) RequireAny(reqs ...Requirement) func(http.Handler) http.Handler {
	return ra.guard("any", func(a Actor) bool {
		return ra.resolver.HasAnyPermission(a, reqs)
	}, "requirements", reqs)
}

// RequireAll allows the request when every requirement holds.
func (ra *RBACAuthorization) RequireAll(reqs ...Requirement) func(http.Handler) http.Handler {
	return ra.guard("all", func(a Actor) bool {
		return ra.resolver.HasAllPermissions(a, reqs)
	}, "requirements", reqs)
}

func (ra *RBACAuthorization) RequireModule(moduleID string) func(http.Handler) http.Handler {
	return ra.guard("module", func(a Actor) bool {
		return ra.resolver.HasModuleAccess(a, moduleID)
	}, "module", moduleID)
}

func (ra *RBACAuthorization) RequireSection(sectionID string) func(http.Handler) http.Handler {
	return ra.guard("section", func(a Actor) bool {
		return ra.resolver.HasSectionAccess(a, sectionID)
	}, "section", sectionID)
}
