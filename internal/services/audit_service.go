package services

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"finara/internal/models"
)

// Audit actions recorded by the HTTP handlers.
const (
	AuditRegister            = "REGISTER"
	AuditLogin               = "LOGIN"
	AuditCreateTransaction   = "CREATE_TRANSACTION"
	AuditUpdateTransaction   = "UPDATE_TRANSACTION"
	AuditDeleteTransaction   = "DELETE_TRANSACTION"
	AuditUpdateReportSetting = "UPDATE_REPORT_SETTING"
)

type auditService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB, log *zap.SugaredLogger) AuditServicer {
	return &auditService{db: db, log: log}
}

// Log writes an audit row synchronously. Failures are logged and swallowed
// so an audit outage never fails the request that triggered it.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}

	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			s.log.Warnw("audit changes not encodable", "action", action, "error", err)
		} else {
			entry.Changes = string(data)
		}
	}

	if err := s.db.Create(entry).Error; err != nil {
		s.log.Errorw("failed to write audit log",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource", resourceType+"/"+resourceID,
		)
	}
}
