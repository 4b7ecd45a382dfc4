package service

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/reminder"
	"github.com/mmynk/kinship/internal/storage"
	"github.com/mmynk/kinship/internal/theme"
)

// MaxFontSize bounds an uploaded font file.
const MaxFontSize = 16 << 20

var (
	ErrNotConfirmedClear = apperr.FailedPrecondition("clearing all data must be confirmed")
	ErrInvalidFont       = apperr.InvalidArg("font must be a non-empty .ttf, .otf, .woff or .woff2 file")
)

var fontExtensions = map[string]bool{".ttf": true, ".otf": true, ".woff": true, ".woff2": true}

// SettingsService implements the Connect SettingsService
type SettingsService struct {
	store storage.Store
	cell  *theme.Cell
}

// NewSettingsService creates a SettingsService. cell is the process-wide
// appearance state, initialised from the stored setting at startup.
func NewSettingsService(store storage.Store, cell *theme.Cell) *SettingsService {
	return &SettingsService{store: store, cell: cell}
}

// NewSettingsServiceHandler mounts every SettingsService procedure under one path prefix.
func NewSettingsServiceHandler(svc *SettingsService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	mux := http.NewServeMux()
	mux.Handle(SettingsServiceGetReminderOffsetsProcedure, connect.NewUnaryHandler(SettingsServiceGetReminderOffsetsProcedure, svc.GetReminderOffsets, opts...))
	mux.Handle(SettingsServiceSetReminderOffsetsProcedure, connect.NewUnaryHandler(SettingsServiceSetReminderOffsetsProcedure, svc.SetReminderOffsets, opts...))
	mux.Handle(SettingsServiceSetFontProcedure, connect.NewUnaryHandler(SettingsServiceSetFontProcedure, svc.SetFont, opts...))
	mux.Handle(SettingsServiceResetFontProcedure, connect.NewUnaryHandler(SettingsServiceResetFontProcedure, svc.ResetFont, opts...))
	mux.Handle(SettingsServiceGetAppearanceProcedure, connect.NewUnaryHandler(SettingsServiceGetAppearanceProcedure, svc.GetAppearance, opts...))
	mux.Handle(SettingsServiceSetAppearanceProcedure, connect.NewUnaryHandler(SettingsServiceSetAppearanceProcedure, svc.SetAppearance, opts...))
	mux.Handle(SettingsServiceClearAllProcedure, connect.NewUnaryHandler(SettingsServiceClearAllProcedure, svc.ClearAll, opts...))
	return "/" + SettingsServiceName + "/", mux
}

// GetReminderOffsets returns the birthday reminder offsets in days.
func (s *SettingsService) GetReminderOffsets(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ReminderOffsets], error) {
	offsets, err := reminder.Offsets(ctx, s.store)
	if err != nil {
		slog.Error("GetReminderOffsets failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&ReminderOffsets{Offsets: offsets}), nil
}

// SetReminderOffsets stores the birthday reminder offsets. Duplicates are dropped.
func (s *SettingsService) SetReminderOffsets(ctx context.Context, req *connect.Request[ReminderOffsets]) (*connect.Response[ReminderOffsets], error) {
	slog.Info("SetReminderOffsets request received", "offsets", req.Msg.Offsets)

	norm, err := models.NormalizeOffsets(req.Msg.Offsets)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	value, err := models.EncodeOffsets(norm)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	if err := s.store.PutSetting(ctx, &models.Setting{Key: models.SettingBirthdayReminders, Value: value}); err != nil {
		slog.Error("SetReminderOffsets failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&ReminderOffsets{Offsets: norm}), nil
}

// SetFont stores a custom display font.
func (s *SettingsService) SetFont(ctx context.Context, req *connect.Request[SetFontRequest]) (*connect.Response[Empty], error) {
	name := filepath.Base(req.Msg.FileName)
	slog.Info("SetFont request received", "file_name", name, "size", len(req.Msg.Data))

	if len(req.Msg.Data) == 0 || len(req.Msg.Data) > MaxFontSize || !fontExtensions[strings.ToLower(filepath.Ext(name))] {
		return nil, apperr.ToConnect(ErrInvalidFont)
	}
	setting := &models.Setting{Key: models.SettingCustomFont, Value: req.Msg.Data, FileName: name}
	if err := s.store.PutSetting(ctx, setting); err != nil {
		slog.Error("SetFont failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// ResetFont goes back to the built-in font.
func (s *SettingsService) ResetFont(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	if err := s.store.DeleteSetting(ctx, models.SettingCustomFont); err != nil {
		slog.Error("ResetFont failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// GetAppearance returns the appearance mode and whether dark styling applies.
func (s *SettingsService) GetAppearance(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Appearance], error) {
	return connect.NewResponse(appearanceMsg(s.cell.State())), nil
}

// SetAppearance records a user choice, a platform dark-mode signal, or both.
func (s *SettingsService) SetAppearance(ctx context.Context, req *connect.Request[SetAppearanceRequest]) (*connect.Response[Appearance], error) {
	if req.Msg.Mode != "" {
		mode, err := theme.ParseMode(string(req.Msg.Mode))
		if err != nil {
			return nil, apperr.ToConnect(apperr.Wrap(apperr.CodeInvalidArgument, "invalid appearance", err))
		}
		value, err := theme.EncodeMode(mode)
		if err != nil {
			return nil, apperr.ToConnect(err)
		}
		if err := s.store.PutSetting(ctx, &models.Setting{Key: models.SettingAppearance, Value: value}); err != nil {
			slog.Error("SetAppearance failed", "error", err)
			return nil, apperr.ToConnect(err)
		}
		s.cell.SetMode(mode)
		slog.Info("Appearance changed", "mode", mode)
	}
	if req.Msg.SystemDark != nil {
		s.cell.SetSystemDark(*req.Msg.SystemDark)
	}
	return connect.NewResponse(appearanceMsg(s.cell.State())), nil
}

func appearanceMsg(st theme.State) *Appearance {
	return &Appearance{Mode: st.Mode, Dark: st.Dark}
}

// ClearAll deletes every friend, interaction and memo. Settings are kept.
func (s *SettingsService) ClearAll(ctx context.Context, req *connect.Request[ClearAllRequest]) (*connect.Response[Empty], error) {
	slog.Warn("ClearAll request received", "confirm", req.Msg.Confirm)

	if !req.Msg.Confirm {
		return nil, apperr.ToConnect(ErrNotConfirmedClear)
	}
	if err := s.store.ClearAll(ctx); err != nil {
		slog.Error("ClearAll failed", "error", err)
		return nil, apperr.ToConnect(err)
	}
	slog.Info("All records cleared")
	return connect.NewResponse(&Empty{}), nil
}
