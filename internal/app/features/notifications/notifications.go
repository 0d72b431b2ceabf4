// internal/app/features/notifications/notifications.go
package notifications

import (
	"context"
	"net/http"

	notificationstore "github.com/dalemusser/taskhub/internal/app/store/notifications"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

/*────────────────────────────────────────────────────────────────────────────*
| GET /notifications/unread                                                    |
*────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUnread(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Notifications.ListUnread(ctx, actor)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

/*────────────────────────────────────────────────────────────────────────────*
| PATCH /notifications/{notificationID}/read                                   |
*────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	id, err := respond.ObjectIDParam(r, "notificationID")
	if err != nil {
		respond.Error(w, r, h.Log, notificationstore.ErrNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notifications.MarkRead(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, n)
}

/*────────────────────────────────────────────────────────────────────────────*
| PATCH /notifications/read-all                                                |
*────────────────────────────────────────────────────────────────────────────*/

type markAllResponse struct {
	Updated int64 `json:"updated"`
}

func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, actor)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, markAllResponse{Updated: n})
}
