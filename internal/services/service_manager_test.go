package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

func newManager(t *testing.T) ServiceManager {
	t.Helper()
	return NewServiceManager(ServiceDependencies{
		Repo:      newMemRepo(),
		Logger:    testLogger(),
		Validator: validator.New(),
		Publisher: &recordingPublisher{},
	}, ServiceManagerConfig{
		JWTSecret: "secret",
		JWTTTL:    time.Hour,
	})
}

func TestServiceManager_GettersPanicBeforeInitialize(t *testing.T) {
	sm := newManager(t)
	assert.Panics(t, func() { sm.Assessment() })
}

func TestServiceManager_Lifecycle(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	require.NoError(t, sm.Initialize(ctx))
	require.NoError(t, sm.Initialize(ctx))

	assert.NotNil(t, sm.Auth())
	assert.NotNil(t, sm.Company())
	assert.NotNil(t, sm.Topic())
	assert.NotNil(t, sm.File())
	assert.NotNil(t, sm.Assessment())
	assert.NotNil(t, sm.Attempt())
	assert.NotNil(t, sm.Grading())
	assert.NotNil(t, sm.Stats())
	assert.NotNil(t, sm.Export())

	token, _, err := sm.Tokens().Issue(&models.User{ID: "user-1", Role: models.RoleUser})
	require.NoError(t, err)
	claims, err := sm.Tokens().Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	assert.NoError(t, sm.HealthCheck(ctx))
	assert.NoError(t, sm.Shutdown(ctx))
	assert.NoError(t, sm.Shutdown(ctx))
}

func TestServiceManager_RequiresDependencies(t *testing.T) {
	sm := NewServiceManager(ServiceDependencies{Logger: testLogger()}, ServiceManagerConfig{})
	assert.Error(t, sm.Initialize(context.Background()))
}
