// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/services/attachments"
	"github.com/dalemusser/taskhub/internal/app/services/comments"
	"github.com/dalemusser/taskhub/internal/app/services/membership"
	"github.com/dalemusser/taskhub/internal/app/services/notify"
	"github.com/dalemusser/taskhub/internal/app/services/projects"
	"github.com/dalemusser/taskhub/internal/app/services/reports"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	attachmentstore "github.com/dalemusser/taskhub/internal/app/store/attachments"
	commentstore "github.com/dalemusser/taskhub/internal/app/store/comments"
	membershipstore "github.com/dalemusser/taskhub/internal/app/store/memberships"
	notificationstore "github.com/dalemusser/taskhub/internal/app/store/notifications"
	organizationstore "github.com/dalemusser/taskhub/internal/app/store/organizations"
	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/blob"
	"github.com/dalemusser/taskhub/internal/app/system/metrics"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"go.uber.org/zap"
)

// appServices is every service the HTTP layer talks to, built once over the
// Mongo stores.
type appServices struct {
	Metrics    *metrics.Metrics
	Tokens     *auth.TokenIssuer
	Users      auth.UserFetcher
	LoginGuard *ratelimit.LoginLimiter

	Accounts    *accounts.Service
	Projects    *projects.Service
	Membership  *membership.Service
	Tasks       *tasks.Service
	Comments    *comments.Service
	Attachments *attachments.Service
	Notify      *notify.Service
	Reports     *reports.Service
}

func buildServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*appServices, error) {
	db := deps.TaskHubMongoDatabase

	tokens, err := auth.NewTokenIssuer(appCfg.JWTSecret, appCfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	blobs, err := blob.NewOS(appCfg.UploadDir)
	if err != nil {
		return nil, err
	}

	var (
		m         = metrics.New()
		runner    = txn.New(db, logger)
		users     = userstore.New(db)
		orgs      = organizationstore.New(db)
		projs     = projectstore.New(db)
		members   = membershipstore.New(db)
		taskSt    = taskstore.New(db)
		commentSt = commentstore.New(db)
		attachSt  = attachmentstore.New(db)
		notifSt   = notificationstore.New(db)
	)
	gate := projectpolicy.NewGate(projs, taskSt, members, m)
	notifier := notify.New(notifSt, logger, m)

	s := &appServices{
		Metrics:    m,
		Tokens:     tokens,
		Users:      users,
		LoginGuard: ratelimit.NewLoginLimiter(ratelimit.LoginConfig{PerIP: appCfg.LoginPerIP, PerEmail: appCfg.LoginPerEmail}),
		Notify:     notifier,
	}
	s.Projects = projects.New(projects.Deps{
		Projects:      projs,
		Memberships:   members,
		Tasks:         taskSt,
		Comments:      commentSt,
		Attachments:   attachSt,
		Notifications: notifSt,
		Blobs:         blobs,
		Gate:          gate,
		Txn:           runner,
		Log:           logger,
	})
	s.Membership = membership.New(members, users, gate, logger)
	s.Tasks = tasks.New(tasks.Deps{
		Tasks:    taskSt,
		Users:    users,
		Notifier: notifier,
		Gate:     gate,
		Txn:      runner,
		Log:      logger,
		Metrics:  m,
	})
	s.Comments = comments.New(commentSt, notifier, gate, runner, logger)
	s.Attachments = attachments.New(attachments.Config{
		MaxFileSize:     appCfg.MaxFileSize,
		MaxFilesPerTask: appCfg.MaxFilesPerTask,
	}, attachSt, blobs, gate, logger)
	s.Reports = reports.New(taskSt, gate, nil)
	s.Accounts = accounts.New(accounts.Deps{
		Config: accounts.Config{
			MinPasswordLength: appCfg.MinPasswordLength,
			BcryptCost:        appCfg.BcryptCost,
		},
		Orgs:          orgs,
		Users:         users,
		Notifications: notifSt,
		Projects:      s.Projects,
		Tokens:        tokens,
		Gate:          gate,
		Txn:           runner,
		Log:           logger,
	})
	return s, nil
}
