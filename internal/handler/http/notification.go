package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	notificationservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
)

const streamPingInterval = 30 * time.Second

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// GetSSEToken issues the short-lived token Stream expects in ?token=,
	// since EventSource cannot send an Authorization header.
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifications notification.Service
	tokens        jwt.Service
}

func NewNotificationHandler(notifications notification.Service, tokens jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{notifications: notifications, tokens: tokens}
}

// currentUserID writes the error response itself when there is no session.
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor, err := session.FromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return "", false
	}
	return actor.UserID, true
}

func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	filter := notification.ListFilter{
		Page:       getIntQueryParam(r, "page", 1),
		PageSize:   getIntQueryParam(r, "page_size", notification.DefaultPageSize),
		UnreadOnly: getBoolQueryParam(r, "unread_only", false),
	}
	result, err := h.notifications.List(r.Context(), userID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req notification.MarkAsReadRequest
	if !decodeJSON(w, r, "MarkAsRead", &req) {
		return
	}
	if err := h.notifications.MarkAsRead(r.Context(), userID, req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}

func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllAsRead(r.Context(), userID); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

func (h *notificationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.notifications.Delete(r.Context(), userID, id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notification deleted", nil)
}

func (h *notificationHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.tokens.GenerateSSEToken(userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, notification.SSETokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream keeps a text/event-stream open: a connected frame, then every new
// notification and a ping every streamPingInterval.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Unauthorized(w, "token query parameter is required")
		return
	}
	userID, err := h.tokens.ValidateSSEToken(token)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired stream token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, unsubscribe := h.notifications.Subscribe(r.Context(), userID)
	defer unsubscribe()

	send := func(ev sse.Event) bool {
		if err := sse.Write(w, ev); err != nil {
			slog.Debug("Notification stream closed", "user_id", userID, "error", err)
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(sse.Event{Name: "connected", Data: map[string]string{"status": "connected", "user_id": userID}}) {
		return
	}

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case resp, open := <-events:
			if !open {
				return
			}
			if !send(sse.Event{Name: notificationservice.EventName, Data: resp}) {
				return
			}
		case t := <-ping.C:
			if !send(sse.Event{Name: "ping", Data: map[string]int64{"timestamp": t.Unix()}}) {
				return
			}
		}
	}
}
