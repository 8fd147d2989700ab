package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medcore/patientcare/internal/domain/attachment"
	"github.com/medcore/patientcare/internal/domain/history"
	"github.com/medcore/patientcare/internal/domain/patient"
	"github.com/medcore/patientcare/internal/service"
)

type PatientHandler struct {
	svc           *service.PatientAggregateService
	maxUploadSize int64
	log           *zap.Logger
}

func NewPatientHandler(svc *service.PatientAggregateService, maxUploadSize int64, log *zap.Logger) *PatientHandler {
	return &PatientHandler{svc: svc, maxUploadSize: maxUploadSize, log: log}
}

func (h *PatientHandler) Register(rg *gin.RouterGroup) {
	patients := rg.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/search", h.SearchPatients)
		patients.POST("", h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)

		patients.POST("/:id/medical-history", h.AddMedicalHistory)
		patients.POST("/:id/medical-history/:historyId/attachments", h.UploadHistoryAttachment)
		patients.POST("/:id/attachments", h.UploadPatientAttachment)
	}

	rg.GET("/medical-history/:historyId", h.GetMedicalHistory)
	rg.GET("/medical-history/:historyId/attachments", h.GetHistoryAttachments)

	rg.GET("/attachments/:attachmentId", h.DownloadAttachment)
	rg.DELETE("/attachments/:attachmentId", h.DeleteAttachment)

	rg.POST("/reconcile-orphans", h.ReconcileOrphans)
}

func (h *PatientHandler) ListPatients(c *gin.Context) {
	patients, err := h.svc.ListAllPatients(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patients)
}

func (h *PatientHandler) GetPatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) SearchPatients(c *gin.Context) {
	var attType *attachment.Type
	if raw := c.Query("attachment_type"); raw != "" {
		t := attachment.Type(strings.ToLower(raw))
		if !t.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid attachment_type")
			return
		}
		attType = &t
	}

	patients, err := h.svc.SearchPatients(
		c.Request.Context(),
		c.Query("name"),
		c.Query("condition"),
		attType,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patients)
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var p patient.Patient
	if !bindJSON(c, &p) {
		return
	}

	created, err := h.svc.CreatePatient(c.Request.Context(), &p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, created)
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var p patient.Patient
	if !bindJSON(c, &p) {
		return
	}
	if p.ID != uuid.Nil && p.ID != id {
		respondError(c, http.StatusBadRequest, "body id does not match path id")
		return
	}
	p.ID = id

	if err := h.svc.UpdatePatient(c.Request.Context(), &p); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PatientHandler) DeletePatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePatient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PatientHandler) AddMedicalHistory(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var entry history.MedicalHistory
	if !bindJSON(c, &entry) {
		return
	}

	created, err := h.svc.AddMedicalHistory(c.Request.Context(), id, &entry)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, created)
}

func (h *PatientHandler) GetMedicalHistory(c *gin.Context) {
	historyID, ok := parseUUID(c, "historyId")
	if !ok {
		return
	}

	entry, err := h.svc.GetMedicalHistoryWithAttachments(c.Request.Context(), historyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, entry)
}

func (h *PatientHandler) GetHistoryAttachments(c *gin.Context) {
	historyID, ok := parseUUID(c, "historyId")
	if !ok {
		return
	}

	atts, err := h.svc.GetAttachmentsByHistory(c.Request.Context(), historyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, atts)
}

func (h *PatientHandler) UploadHistoryAttachment(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	historyID, ok := parseUUID(c, "historyId")
	if !ok {
		return
	}
	h.uploadAttachment(c, patientID, &historyID)
}

func (h *PatientHandler) UploadPatientAttachment(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	h.uploadAttachment(c, patientID, nil)
}

func (h *PatientHandler) uploadAttachment(c *gin.Context, patientID uuid.UUID, historyID *uuid.UUID) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		respondError(c, http.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	defer file.Close()

	created, err := h.svc.UploadAttachment(c.Request.Context(), service.UploadAttachmentCommand{
		PatientID:   patientID,
		HistoryID:   historyID,
		Content:     file,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Type:        attachment.Type(strings.ToLower(c.PostForm("attachment_type"))),
		Notes:       c.PostForm("notes"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, created)
}

func (h *PatientHandler) DownloadAttachment(c *gin.Context) {
	attachmentID, ok := parseUUID(c, "attachmentId")
	if !ok {
		return
	}

	meta, rc, err := h.svc.DownloadAttachment(c.Request.Context(), attachmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer rc.Close()

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+meta.FileName+`"`)
	c.DataFromReader(http.StatusOK, meta.FileSize, contentType, rc, nil)
}

func (h *PatientHandler) DeleteAttachment(c *gin.Context) {
	attachmentID, ok := parseUUID(c, "attachmentId")
	if !ok {
		return
	}

	if err := h.svc.DeleteAttachment(c.Request.Context(), attachmentID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PatientHandler) ReconcileOrphans(c *gin.Context) {
	faults, err := h.svc.ReconcileOrphans(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type fault struct {
		AttachmentID uuid.UUID `json:"attachment_id"`
		BlobID       string    `json:"blob_id"`
	}
	out := make([]fault, 0, len(faults))
	for _, f := range faults {
		out = append(out, fault{AttachmentID: f.AttachmentID, BlobID: f.BlobID})
	}
	respondOK(c, out)
}
