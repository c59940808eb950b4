package service

import (
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

func errUnauthenticated() error {
	return apperrors.NewUnauthorized("authentication required")
}

// generateKey builds a short human-readable external key like "TCK-9F3A02B1".
func generateKey(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
