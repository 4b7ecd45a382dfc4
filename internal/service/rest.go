package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/backup"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/storage"
)

// MaxArchiveSize bounds an uploaded backup archive.
const MaxArchiveSize = 512 << 20

var fontTypes = map[string]string{
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
}

// REST serves the binary endpoints that do not fit a JSON RPC: backup
// archives, friend photos and the custom font.
type REST struct {
	store   storage.Store
	backups *backup.Service
	now     func() time.Time
}

func NewREST(store storage.Store, backups *backup.Service) *REST {
	return &REST{store: store, backups: backups, now: time.Now}
}

// Register adds the REST routes to r, behind mw.
func (h *REST) Register(r *mux.Router, mw ...mux.MiddlewareFunc) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(mw...)
	api.HandleFunc("/backup", h.exportBackup).Methods(http.MethodGet)
	api.HandleFunc("/backup", h.restoreBackup).Methods(http.MethodPost)
	api.HandleFunc("/friends/{id:[0-9]+}/photo", h.friendPhoto).Methods(http.MethodGet)
	api.HandleFunc("/font", h.font).Methods(http.MethodGet)
}

func (h *REST) exportBackup(w http.ResponseWriter, r *http.Request) {
	// Buffer first so a failed export never sends a truncated archive.
	data, err := h.backups.ExportBytes(r.Context())
	if err != nil {
		slog.Error("Backup export failed", "error", err)
		writeError(w, err)
		return
	}

	name := backup.ArchiveName(h.now())
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (h *REST) restoreBackup(w http.ResponseWriter, r *http.Request) {
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if !confirm {
		writeError(w, backup.ErrNotConfirmed)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxArchiveSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, apperr.InvalidArg("backup archive is too large"))
			return
		}
		writeError(w, apperr.Wrap(apperr.CodeInvalidArgument, "failed to read backup archive", err))
		return
	}

	summary, err := h.backups.RestoreBytes(r.Context(), data, confirm)
	if err != nil {
		slog.Error("Backup restore failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *REST) friendPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, apperr.InvalidArg("invalid friend id"))
		return
	}
	friend, err := h.store.GetFriend(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(friend.Photo) == 0 {
		writeError(w, apperr.NotFound("friend has no photo"))
		return
	}
	http.ServeContent(w, r, fmt.Sprintf("friend_%d.jpg", id), time.Time{}, bytes.NewReader(friend.Photo))
}

func (h *REST) font(w http.ResponseWriter, r *http.Request) {
	setting, err := h.store.GetSetting(r.Context(), models.SettingCustomFont)
	if err != nil {
		writeError(w, err)
		return
	}
	if setting == nil || len(setting.Value) == 0 {
		writeError(w, apperr.NotFound("no custom font"))
		return
	}
	if ct, ok := fontTypes[strings.ToLower(filepath.Ext(setting.FileName))]; ok {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeContent(w, r, setting.FileName, time.Time{}, bytes.NewReader(setting.Value))
}

// Healthz answers liveness probes.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var httpStatuses = map[apperr.Code]int{
	apperr.CodeInvalidArgument:    http.StatusBadRequest,
	apperr.CodeNotFound:           http.StatusNotFound,
	apperr.CodeFailedPrecondition: http.StatusPreconditionFailed,
	apperr.CodePermissionDenied:   http.StatusForbidden,
	apperr.CodeUnauthenticated:    http.StatusUnauthorized,
}

func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	status, ok := httpStatuses[code]
	if !ok {
		status = http.StatusInternalServerError
		code = apperr.CodeInternal
	}
	writeJSON(w, status, &apperr.Error{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
