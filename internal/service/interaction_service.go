package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/ledger"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/storage"
)

// InteractionService implements the Connect InteractionService
type InteractionService struct {
	store storage.Store
	now   func() time.Time
}

// NewInteractionService creates a new InteractionService with the given storage backend.
func NewInteractionService(store storage.Store) *InteractionService {
	return &InteractionService{store: store, now: time.Now}
}

// NewInteractionServiceHandler mounts every InteractionService procedure under one path prefix.
func NewInteractionServiceHandler(svc *InteractionService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	mux := http.NewServeMux()
	mux.Handle(InteractionServiceLogInteractionProcedure, connect.NewUnaryHandler(InteractionServiceLogInteractionProcedure, svc.LogInteraction, opts...))
	mux.Handle(InteractionServiceUpdateInteractionProcedure, connect.NewUnaryHandler(InteractionServiceUpdateInteractionProcedure, svc.UpdateInteraction, opts...))
	mux.Handle(InteractionServiceDeleteInteractionProcedure, connect.NewUnaryHandler(InteractionServiceDeleteInteractionProcedure, svc.DeleteInteraction, opts...))
	mux.Handle(InteractionServiceListByFriendProcedure, connect.NewUnaryHandler(InteractionServiceListByFriendProcedure, svc.ListByFriend, opts...))
	mux.Handle(InteractionServiceTimelineProcedure, connect.NewUnaryHandler(InteractionServiceTimelineProcedure, svc.Timeline, opts...))
	mux.Handle(InteractionServiceFlashbacksProcedure, connect.NewUnaryHandler(InteractionServiceFlashbacksProcedure, svc.Flashbacks, opts...))
	mux.Handle(InteractionServiceBalanceProcedure, connect.NewUnaryHandler(InteractionServiceBalanceProcedure, svc.Balance, opts...))
	return "/" + InteractionServiceName + "/", mux
}

// LogInteraction records one activity with one or more friends. Every
// participant gets their own record; all share one ActivityID.
func (s *InteractionService) LogInteraction(ctx context.Context, req *connect.Request[LogInteractionRequest]) (*connect.Response[LogInteractionResponse], error) {
	slog.Info("LogInteraction request received",
		"type", req.Msg.Interaction.Type,
		"title", req.Msg.Interaction.Title,
		"participants_count", len(req.Msg.FriendIDs),
	)

	participants := uniqueIDs(req.Msg.FriendIDs)
	if len(participants) == 0 {
		return nil, apperr.ToConnect(models.ErrNoParticipants)
	}

	batch := make([]*models.Interaction, len(participants))
	for i, friendID := range participants {
		batch[i] = req.Msg.Interaction.toModel(friendID)
	}
	// Every record carries the same attributes, validating one covers all.
	if err := batch[0].Validate(); err != nil {
		return nil, apperr.ToConnect(err)
	}

	for _, friendID := range participants {
		if _, err := s.store.GetFriend(ctx, friendID); err != nil {
			slog.Error("LogInteraction failed", "friend_id", friendID, "error", err)
			return nil, apperr.ToConnect(err)
		}
	}

	if err := s.store.CreateInteractions(ctx, batch); err != nil {
		slog.Error("LogInteraction failed", "error", err)
		return nil, apperr.ToConnect(err)
	}

	out := make([]Interaction, len(batch))
	for i, in := range batch {
		out[i] = toInteractionMsg(in)
	}

	slog.Info("Interaction logged", "activity_id", batch[0].ActivityID, "records", len(batch))

	return connect.NewResponse(&LogInteractionResponse{
		ActivityID:   batch[0].ActivityID,
		Interactions: out,
	}), nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// UpdateInteraction rewrites one record. Owner, ActivityID and CreatedAt are kept.
func (s *InteractionService) UpdateInteraction(ctx context.Context, req *connect.Request[UpdateInteractionRequest]) (*connect.Response[InteractionResponse], error) {
	slog.Info("UpdateInteraction request received", "interaction_id", req.Msg.ID)

	existing, err := s.store.GetInteraction(ctx, req.Msg.ID)
	if err != nil {
		slog.Error("UpdateInteraction failed", "interaction_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	in := req.Msg.Interaction.toModel(existing.FriendID)
	if err := in.Validate(); err != nil {
		return nil, apperr.ToConnect(err)
	}
	in.ID = existing.ID
	in.ActivityID = existing.ActivityID
	in.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateInteraction(ctx, in); err != nil {
		slog.Error("UpdateInteraction failed", "interaction_id", in.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	return connect.NewResponse(&InteractionResponse{Interaction: toInteractionMsg(in)}), nil
}

// DeleteInteraction removes one record.
func (s *InteractionService) DeleteInteraction(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Empty], error) {
	slog.Info("DeleteInteraction request received", "interaction_id", req.Msg.ID)

	if err := s.store.DeleteInteraction(ctx, req.Msg.ID); err != nil {
		slog.Error("DeleteInteraction failed", "interaction_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// ListByFriend returns a friend's interactions, newest first.
func (s *InteractionService) ListByFriend(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[ListInteractionsResponse], error) {
	interactions, err := s.store.ListInteractionsByFriend(ctx, req.Msg.ID)
	if err != nil {
		slog.Error("ListByFriend failed", "friend_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&ListInteractionsResponse{
		Interactions: toInteractionMsgs(interactions, nil),
	}), nil
}

func (s *InteractionService) friendNames(ctx context.Context) (map[int64]string, error) {
	friends, err := s.store.ListFriends(ctx, storage.OrderByName)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(friends))
	for i := range friends {
		names[friends[i].ID] = friends[i].DisplayName()
	}
	return names, nil
}

// Timeline returns every interaction grouped by month, newest first.
func (s *InteractionService) Timeline(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[TimelineResponse], error) {
	interactions, err := s.store.ListInteractions(ctx)
	if err != nil {
		slog.Error("Timeline failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	names, err := s.friendNames(ctx)
	if err != nil {
		slog.Error("Timeline failed", "error", err)
		return nil, apperr.ToConnect(err)
	}

	groups := ledger.Timeline(interactions, s.now().Location())
	months := make([]Month, len(groups))
	for i, g := range groups {
		months[i] = Month{
			Label:        g.Label(),
			Year:         g.Year,
			Month:        int(g.Month),
			Interactions: toInteractionMsgs(g.Interactions, names),
		}
	}
	return connect.NewResponse(&TimelineResponse{Months: months}), nil
}

// Flashbacks returns interactions that happened on this day in earlier years.
func (s *InteractionService) Flashbacks(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[FlashbacksResponse], error) {
	interactions, err := s.store.ListInteractions(ctx)
	if err != nil {
		slog.Error("Flashbacks failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	names, err := s.friendNames(ctx)
	if err != nil {
		slog.Error("Flashbacks failed", "error", err)
		return nil, apperr.ToConnect(err)
	}

	found := ledger.Flashbacks(interactions, s.now())
	out := make([]Flashback, len(found))
	for i, fb := range found {
		msg := toInteractionMsg(&fb.Interaction)
		msg.FriendName = names[fb.Interaction.FriendID]
		out[i] = Flashback{YearsAgo: fb.YearsAgo, Interaction: msg}
	}
	return connect.NewResponse(&FlashbacksResponse{Flashbacks: out}), nil
}

// Balance returns the favor/gift ledger with one friend.
func (s *InteractionService) Balance(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[BalanceResponse], error) {
	if _, err := s.store.GetFriend(ctx, req.Msg.ID); err != nil {
		return nil, apperr.ToConnect(err)
	}
	interactions, err := s.store.ListInteractionsByFriend(ctx, req.Msg.ID)
	if err != nil {
		slog.Error("Balance failed", "friend_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&BalanceResponse{
		FriendID: req.Msg.ID,
		Balance:  toBalanceMsg(ledger.Balance(interactions)),
	}), nil
}
