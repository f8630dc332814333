//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"academy-api/internal/pkg/config"
	"academy-api/internal/pkg/jwt"
)

// ReviewerToken mints a reviewer token signed with the test secret.
func ReviewerToken(t *testing.T, cfg config.Config, reviewerID uuid.UUID) string {
	t.Helper()

	svc := jwt.NewService(cfg.JWT.Secret, time.Hour)
	token, err := svc.GenerateToken(reviewerID, "reviewer")
	require.NoError(t, err, "failed to sign reviewer token")
	return token
}

// ExpiredToken mints a token that is already past its expiry.
func ExpiredToken(t *testing.T, cfg config.Config) string {
	t.Helper()

	svc := jwt.NewService(cfg.JWT.Secret, -time.Hour)
	token, err := svc.GenerateToken(uuid.New(), "reviewer")
	require.NoError(t, err, "failed to sign expired token")
	return token
}
