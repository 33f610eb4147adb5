package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/store"
)

const maxBackupSize = 32 << 20

type SettingsHTTPHandler struct {
	store *store.Store
}

func NewSettingsHTTPHandler(s *store.Store) *SettingsHTTPHandler {
	return &SettingsHTTPHandler{
		store: s,
	}
}

func (h *SettingsHTTPHandler) GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.store.Settings(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Settings retrieved successfully", settings))
}

func (h *SettingsHTTPHandler) UpdateSettings(c *gin.Context) {
	var patch store.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		bindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.store.SaveSettings(ctx, patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Settings updated successfully", settings))
}

func (h *SettingsHTTPHandler) ExportBackup(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	backup, err := h.store.Export(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := "stockbook_backup_" + backup.BackupDate.Format("2006-01-02") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, backup)
}

func (h *SettingsHTTPHandler) ImportBackup(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBackupSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Failed to read backup: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	imported, err := h.store.Import(ctx, raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Backup restored successfully", gin.H{"imported": imported}))
}

func (h *SettingsHTTPHandler) SyncQueue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	queue, err := h.store.SyncQueue(ctx)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Sync queue retrieved successfully", queue, listMeta{Total: len(queue)}))
}

func (h *SettingsHTTPHandler) ClearSyncQueue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.ClearSyncQueue(ctx); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Sync queue cleared", nil))
}
