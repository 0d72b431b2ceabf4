// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	attachmentsfeature "github.com/dalemusser/taskhub/internal/app/features/attachments"
	commentsfeature "github.com/dalemusser/taskhub/internal/app/features/comments"
	healthfeature "github.com/dalemusser/taskhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/taskhub/internal/app/features/login"
	membersfeature "github.com/dalemusser/taskhub/internal/app/features/members"
	notificationsfeature "github.com/dalemusser/taskhub/internal/app/features/notifications"
	organizationsfeature "github.com/dalemusser/taskhub/internal/app/features/organizations"
	projectsfeature "github.com/dalemusser/taskhub/internal/app/features/projects"
	reportsfeature "github.com/dalemusser/taskhub/internal/app/features/reports"
	tasksfeature "github.com/dalemusser/taskhub/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/taskhub/internal/app/features/users"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the services over the Mongo
// stores, the session manager, and mounts every feature under /api/v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svcs, err := buildServices(appCfg, deps, logger)
	if err != nil {
		logger.Error("service wiring failed", zap.Error(err))
		return nil, err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, svcs.Tokens, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request, so role
	// changes and deleted accounts take effect immediately.
	sessionMgr.SetUserFetcher(svcs.Users)

	return newRouter(appCfg, svcs, sessionMgr, deps.TaskHubMongoClient, logger), nil
}

// newRouter mounts every feature. Nested resources are mounted on the root
// router next to their parent (/projects/{projectID}/tasks beside
// /projects) so each feature owns its own subrouter.
func newRouter(appCfg AppConfig, svcs *appServices, sessionMgr *auth.SessionManager, db healthfeature.Pinger, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(reqlog.Middleware(logger, svcs.Metrics))
	r.Use(middleware.Recoverer)
	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: appCfg.CORSAllowedOrigins,
			AllowedMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPatch,
				http.MethodDelete,
				http.MethodOptions,
			},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(db, logger)))
	r.Handle("/metrics", svcs.Metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		// Loads SessionUser into context from a bearer token or the session
		// cookie; feature routers decide whether one is required.
		api.Use(sessionMgr.LoadSessionUser)

		var guard loginfeature.Guard
		if svcs.LoginGuard != nil {
			guard = svcs.LoginGuard
		}
		api.Mount("/auth", loginfeature.Routes(loginfeature.NewHandler(svcs.Accounts, sessionMgr, guard, logger)))
		api.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(svcs.Accounts, logger)))
		api.Mount("/organizations", organizationsfeature.Routes(organizationsfeature.NewHandler(svcs.Accounts, sessionMgr, logger)))

		tasksHandler := tasksfeature.NewHandler(svcs.Tasks, logger)
		api.Mount("/projects", projectsfeature.Routes(projectsfeature.NewHandler(svcs.Projects, logger)))
		api.Mount("/projects/{projectID}/members", membersfeature.Routes(membersfeature.NewHandler(svcs.Membership, logger)))
		api.Mount("/projects/{projectID}/tasks", tasksfeature.ProjectRoutes(tasksHandler))
		api.Mount("/projects/{projectID}/report", reportsfeature.Routes(reportsfeature.NewHandler(svcs.Reports, logger)))
		api.Mount("/tasks", tasksfeature.Routes(tasksHandler))

		attachmentsHandler := attachmentsfeature.NewHandler(svcs.Attachments, appCfg.MaxFileSize, logger)
		api.Mount("/tasks/{taskID}/comments", commentsfeature.Routes(commentsfeature.NewHandler(svcs.Comments, logger)))
		api.Mount("/tasks/{taskID}/attachments", attachmentsfeature.TaskRoutes(attachmentsHandler))
		api.Mount("/attachments", attachmentsfeature.Routes(attachmentsHandler))

		api.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(svcs.Notify, logger)))
	})

	return r
}
