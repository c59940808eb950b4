package worker

import (
	"github.com/spec-kit/intake-service/internal/service"
)

// StartAuditWorker registers the audit event handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
