package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/reminder"
)

// ReminderService exposes the reminder plan.
type ReminderService struct {
	syncer *reminder.Syncer
	now    func() time.Time
}

func NewReminderService(syncer *reminder.Syncer) *ReminderService {
	return &ReminderService{syncer: syncer, now: time.Now}
}

// NewReminderServiceHandler mounts every ReminderService procedure under one path prefix.
func NewReminderServiceHandler(svc *ReminderService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	mux := http.NewServeMux()
	mux.Handle(ReminderServicePreviewProcedure, connect.NewUnaryHandler(ReminderServicePreviewProcedure, svc.Preview, opts...))
	mux.Handle(ReminderServiceSyncProcedure, connect.NewUnaryHandler(ReminderServiceSyncProcedure, svc.Sync, opts...))
	return "/" + ReminderServiceName + "/", mux
}

// Preview computes the notifications a sync would install.
func (s *ReminderService) Preview(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[PreviewResponse], error) {
	plan, err := s.syncer.Preview(ctx, s.now())
	if err != nil {
		slog.Error("Preview failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	if plan == nil {
		plan = []reminder.Notification{}
	}
	return connect.NewResponse(&PreviewResponse{Notifications: plan}), nil
}

// Sync replaces every pending notification with a fresh plan.
func (s *ReminderService) Sync(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[SyncResponse], error) {
	n, err := s.syncer.Sync(ctx)
	if err != nil {
		slog.Error("Sync failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&SyncResponse{Scheduled: n}), nil
}
