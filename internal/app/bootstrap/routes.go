// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	enrollmentfeature "github.com/melodica-app/melodica/internal/app/features/enrollment"
	healthfeature "github.com/melodica-app/melodica/internal/app/features/health"
	issuancefeature "github.com/melodica-app/melodica/internal/app/features/issuance"
	profilefeature "github.com/melodica-app/melodica/internal/app/features/profile"
	userinfofeature "github.com/melodica-app/melodica/internal/app/features/userinfo"
	userstore "github.com/melodica-app/melodica/internal/app/store/users"
	"github.com/melodica-app/melodica/internal/app/system/auth"
	"github.com/melodica-app/melodica/internal/app/system/codes"
	"github.com/melodica-app/melodica/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Melodica applies session middleware globally so every handler can see
// the current caller, then mounts the health endpoint publicly and the
// credential and profile endpoints under /api behind a sign-in gate.
// The userinfo endpoint stays outside the gate: it reports the
// signed-out state rather than rejecting it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. This ensures role changes and disabled accounts take
	// effect immediately — a just-promoted teacher can issue invites
	// without signing in again.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	hasher := codes.NewHasher(appCfg.CodePepper)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		// Identity probe, reachable signed out.
		userinfofeature.MountRoutes(api, userinfofeature.NewHandler())

		api.Group(func(gated chi.Router) {
			gated.Use(sessionMgr.RequireSignedIn)

			profilefeature.MountRoutes(gated, profilefeature.NewHandler(deps.MongoDatabase, logger))

			// Credential endpoints carry a per-IP throttle on top of the
			// shared failure message, so probing the code space is slow
			// as well as uninformative.
			gated.Group(func(creds chi.Router) {
				creds.Use(ratelimit.ByIP(60, time.Minute))

				enrollmentfeature.MountRoutes(creds, enrollmentfeature.NewHandler(deps.MongoDatabase, hasher, logger))
				issuancefeature.MountRoutes(creds, issuancefeature.NewHandler(deps.MongoDatabase, hasher, logger))
			})
		})
	})

	return r, nil
}
