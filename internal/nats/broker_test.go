package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectForCity(t *testing.T) {
	assert.Equal(t, "estimatr.estimates.casablanca", SubjectForCity("Casablanca"))
	assert.Equal(t, "estimatr.estimates.sale-el-jadida", SubjectForCity("Salé El Jadida"))
	assert.Equal(t, "estimatr.estimates.unknown", SubjectForCity(""))
}

func TestOpenAndSetupStream(t *testing.T) {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	ctx := context.Background()
	stream, err := SetupStream(ctx, b.JetStream())
	require.NoError(t, err)

	ack, err := b.JetStream().Publish(ctx, SubjectForCity("Rabat"), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, StreamName, ack.Stream)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)

	// Setting up twice is idempotent
	_, err = SetupStream(ctx, b.JetStream())
	require.NoError(t, err)
}
