package contextutil_test

import (
	"context"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetadataRoundTrip(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	ctx = contextutil.WithUserID(ctx, "user-1")
	ctx = contextutil.WithRole(ctx, "HEAD")

	meta := contextutil.ExtractMetadata(ctx)

	assert.Equal(t, "rid-1", meta.RequestID)
	assert.Equal(t, "user-1", meta.UserID)
	assert.Equal(t, "HEAD", meta.Role)
	assert.Len(t, meta.Fields(), 3)
	assert.Empty(t, contextutil.GetRequestID(context.Background()))
	assert.Empty(t, contextutil.ExtractMetadata(context.Background()).Fields())
}

func TestGetLogger(t *testing.T) {
	fallback := zap.NewNop()
	scoped := zap.NewExample()

	assert.Same(t, fallback, contextutil.GetLogger(context.Background(), fallback))
	assert.Same(t, scoped, contextutil.GetLogger(contextutil.WithLogger(context.Background(), scoped), fallback))
	assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))
}
