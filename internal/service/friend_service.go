package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/ledger"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/photo"
	"github.com/mmynk/kinship/internal/storage"
)

// FriendService implements the Connect FriendService
type FriendService struct {
	store storage.Store
	now   func() time.Time
}

// NewFriendService creates a new FriendService with the given storage backend.
func NewFriendService(store storage.Store) *FriendService {
	return &FriendService{store: store, now: time.Now}
}

// NewFriendServiceHandler mounts every FriendService procedure under one path prefix.
func NewFriendServiceHandler(svc *FriendService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	mux := http.NewServeMux()
	mux.Handle(FriendServiceCreateFriendProcedure, connect.NewUnaryHandler(FriendServiceCreateFriendProcedure, svc.CreateFriend, opts...))
	mux.Handle(FriendServiceUpdateFriendProcedure, connect.NewUnaryHandler(FriendServiceUpdateFriendProcedure, svc.UpdateFriend, opts...))
	mux.Handle(FriendServiceGetFriendProcedure, connect.NewUnaryHandler(FriendServiceGetFriendProcedure, svc.GetFriend, opts...))
	mux.Handle(FriendServiceListFriendsProcedure, connect.NewUnaryHandler(FriendServiceListFriendsProcedure, svc.ListFriends, opts...))
	mux.Handle(FriendServiceDeleteFriendProcedure, connect.NewUnaryHandler(FriendServiceDeleteFriendProcedure, svc.DeleteFriend, opts...))
	mux.Handle(FriendServiceAddMemoProcedure, connect.NewUnaryHandler(FriendServiceAddMemoProcedure, svc.AddMemo, opts...))
	mux.Handle(FriendServiceListMemosProcedure, connect.NewUnaryHandler(FriendServiceListMemosProcedure, svc.ListMemos, opts...))
	mux.Handle(FriendServiceDeleteMemoProcedure, connect.NewUnaryHandler(FriendServiceDeleteMemoProcedure, svc.DeleteMemo, opts...))
	return "/" + FriendServiceName + "/", mux
}

// CreateFriend creates a new friend.
func (s *FriendService) CreateFriend(ctx context.Context, req *connect.Request[CreateFriendRequest]) (*connect.Response[FriendResponse], error) {
	slog.Info("CreateFriend request received", "name", req.Msg.Friend.Name)

	friend, err := req.Msg.Friend.toModel()
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	if err := friend.Validate(); err != nil {
		return nil, apperr.ToConnect(err)
	}
	if len(req.Msg.Friend.Photo) > 0 {
		if friend.Photo, err = photo.Normalize(req.Msg.Friend.Photo); err != nil {
			return nil, apperr.ToConnect(err)
		}
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateFriend(ctx, friend); err != nil {
		slog.Error("CreateFriend failed", "error", err)
		return nil, apperr.ToConnect(err)
	}

	slog.Info("Friend created", "friend_id", friend.ID)

	return connect.NewResponse(&FriendResponse{
		Friend: toFriendMsg(friend, ledger.Derive(friend, nil, s.now())),
	}), nil
}

// UpdateFriend overwrites an existing friend. The photo is kept unless new
// data is sent or ClearPhoto is set.
func (s *FriendService) UpdateFriend(ctx context.Context, req *connect.Request[UpdateFriendRequest]) (*connect.Response[FriendResponse], error) {
	slog.Info("UpdateFriend request received", "friend_id", req.Msg.ID, "name", req.Msg.Friend.Name)

	existing, err := s.store.GetFriend(ctx, req.Msg.ID)
	if err != nil {
		slog.Error("UpdateFriend failed", "friend_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	friend, err := req.Msg.Friend.toModel()
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	if err := friend.Validate(); err != nil {
		return nil, apperr.ToConnect(err)
	}
	friend.ID = existing.ID
	friend.CreatedAt = existing.CreatedAt

	switch {
	case len(req.Msg.Friend.Photo) > 0:
		if friend.Photo, err = photo.Normalize(req.Msg.Friend.Photo); err != nil {
			return nil, apperr.ToConnect(err)
		}
	case !req.Msg.ClearPhoto:
		friend.Photo = existing.Photo
	}

	if err := s.store.UpdateFriend(ctx, friend); err != nil {
		slog.Error("UpdateFriend failed", "friend_id", friend.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	interactions, err := s.store.ListInteractionsByFriend(ctx, friend.ID)
	if err != nil {
		slog.Error("Failed to load interactions", "friend_id", friend.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	slog.Info("Friend updated", "friend_id", friend.ID)

	return connect.NewResponse(&FriendResponse{
		Friend: toFriendMsg(friend, ledger.Derive(friend, interactions, s.now())),
	}), nil
}

// GetFriend retrieves a friend with its derived status.
func (s *FriendService) GetFriend(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[FriendResponse], error) {
	slog.Info("GetFriend request received", "friend_id", req.Msg.ID)

	friend, err := s.store.GetFriend(ctx, req.Msg.ID)
	if err != nil {
		slog.Error("GetFriend failed", "friend_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}
	interactions, err := s.store.ListInteractionsByFriend(ctx, friend.ID)
	if err != nil {
		slog.Error("GetFriend failed", "friend_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	return connect.NewResponse(&FriendResponse{
		Friend: toFriendMsg(friend, ledger.Derive(friend, interactions, s.now())),
	}), nil
}

// ListFriends returns every friend with its status, pinned first.
func (s *FriendService) ListFriends(ctx context.Context, req *connect.Request[ListFriendsRequest]) (*connect.Response[ListFriendsResponse], error) {
	slog.Info("ListFriends request received", "order", req.Msg.Order, "tag", req.Msg.Tag)

	order := storage.OrderByName
	switch req.Msg.Order {
	case "", "name":
	case "created":
		order = storage.OrderByCreated
	default:
		return nil, apperr.ToConnect(apperr.InvalidArg("order must be name or created"))
	}

	friends, err := s.store.ListFriends(ctx, order)
	if err != nil {
		slog.Error("ListFriends failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	interactions, err := s.store.ListInteractions(ctx)
	if err != nil {
		slog.Error("ListFriends failed", "error", err)
		return nil, apperr.ToConnect(err)
	}

	byFriend := (&models.Snapshot{Interactions: interactions}).InteractionsByFriend()
	now := s.now()

	out := make([]Friend, 0, len(friends))
	for i := range friends {
		f := &friends[i]
		if req.Msg.Tag != "" && !strings.EqualFold(f.Tag, req.Msg.Tag) {
			continue
		}
		out = append(out, toFriendMsg(f, ledger.Derive(f, byFriend[f.ID], now)))
	}

	slog.Info("ListFriends successful", "count", len(out))

	return connect.NewResponse(&ListFriendsResponse{Friends: out}), nil
}

// DeleteFriend removes a friend with its interactions and memos.
func (s *FriendService) DeleteFriend(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Empty], error) {
	slog.Info("DeleteFriend request received", "friend_id", req.Msg.ID)

	if err := s.store.DeleteFriend(ctx, req.Msg.ID); err != nil {
		slog.Error("DeleteFriend failed", "friend_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	slog.Info("Friend deleted", "friend_id", req.Msg.ID)
	return connect.NewResponse(&Empty{}), nil
}

// AddMemo attaches a note to a friend.
func (s *FriendService) AddMemo(ctx context.Context, req *connect.Request[AddMemoRequest]) (*connect.Response[MemoResponse], error) {
	slog.Info("AddMemo request received", "friend_id", req.Msg.FriendID)

	content := strings.TrimSpace(req.Msg.Content)
	if content == "" {
		return nil, apperr.ToConnect(models.ErrEmptyMemo)
	}
	if _, err := s.store.GetFriend(ctx, req.Msg.FriendID); err != nil {
		return nil, apperr.ToConnect(err)
	}

	memo := &models.Memo{FriendID: req.Msg.FriendID, Content: content}
	if err := s.store.CreateMemo(ctx, memo); err != nil {
		slog.Error("AddMemo failed", "friend_id", req.Msg.FriendID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	return connect.NewResponse(&MemoResponse{Memo: toMemoMsg(memo)}), nil
}

// ListMemos returns a friend's memos, newest first.
func (s *FriendService) ListMemos(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[ListMemosResponse], error) {
	memos, err := s.store.ListMemosByFriend(ctx, req.Msg.ID)
	if err != nil {
		slog.Error("ListMemos failed", "friend_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}

	out := make([]Memo, len(memos))
	for i := range memos {
		out[i] = toMemoMsg(&memos[i])
	}
	return connect.NewResponse(&ListMemosResponse{Memos: out}), nil
}

// DeleteMemo removes a memo.
func (s *FriendService) DeleteMemo(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Empty], error) {
	slog.Info("DeleteMemo request received", "memo_id", req.Msg.ID)

	if err := s.store.DeleteMemo(ctx, req.Msg.ID); err != nil {
		slog.Error("DeleteMemo failed", "memo_id", req.Msg.ID, "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&Empty{}), nil
}
