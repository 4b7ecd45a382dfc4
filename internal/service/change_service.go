package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/kinship/internal/events"
)

// ChangeService streams record store changes so clients can re-run their
// queries instead of polling.
type ChangeService struct {
	broker *events.Broker
}

func NewChangeService(broker *events.Broker) *ChangeService {
	return &ChangeService{broker: broker}
}

// NewChangeServiceHandler mounts the ChangeService stream.
func NewChangeServiceHandler(svc *ChangeService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	mux := http.NewServeMux()
	mux.Handle(ChangeServiceWatchChangesProcedure, connect.NewServerStreamHandler(ChangeServiceWatchChangesProcedure, svc.WatchChanges, opts...))
	return "/" + ChangeServiceName + "/", mux
}

// WatchChanges sends one message per committed change until the client goes away.
func (s *ChangeService) WatchChanges(ctx context.Context, req *connect.Request[WatchChangesRequest], stream *connect.ServerStream[events.Change]) error {
	changes, cancel := s.broker.Subscribe(req.Msg.Collections...)
	defer cancel()

	slog.Debug("Change watcher attached", "collections", req.Msg.Collections)
	defer slog.Debug("Change watcher detached")

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			if err := stream.Send(&c); err != nil {
				return err
			}
		}
	}
}
