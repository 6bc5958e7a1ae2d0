package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowbook/internal/models"
)

func TestUpsertAndGetProfile(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	p := &models.Profile{
		UserID:      "user-1",
		Name:        "Ada",
		Phone:       "+15550001111",
		Email:       "ada@example.com",
		Preferences: map[string]string{"locale": "en", "reminders": "sms"},
	}
	require.NoError(t, st.UpsertProfile(ctx, p))

	got, err := st.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "sms", got.Preferences["reminders"])

	p.Name = "Ada L."
	require.NoError(t, st.UpsertProfile(ctx, p))

	got, err = st.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada L.", got.Name)
}

func TestGetProfileMissing(t *testing.T) {
	st := setupTestStore(t)

	got, err := st.GetProfile(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPreferences(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, ok, err := st.GetPreference(ctx, "user-1", "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SetPreference(ctx, "user-1", "theme", "dark"))
	require.NoError(t, st.SetPreference(ctx, "user-1", "theme", "light"))

	v, ok, err := st.GetPreference(ctx, "user-1", "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)
}
