package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennypal/internal/amqp"
	"pennypal/internal/auth"
	"pennypal/internal/core"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.Profile(ctx, env.userID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, core.DefaultCurrency, u.Currency)

	_, err = env.users.Register(ctx, RegisterInput{Email: "ADA@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, core.ErrDuplicate)

	_, err = env.users.Register(ctx, RegisterInput{Email: "short@example.com", Password: "123"})
	assert.Equal(t, core.OutcomeValidationFailed, core.OutcomeOf(err))

	got, err := env.users.Authenticate(ctx, " ada@example.com ", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, env.userID, got.ID)

	_, err = env.users.Authenticate(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = env.users.Authenticate(ctx, "nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestUserService_RegisterDefaultsName(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.users.Register(context.Background(), RegisterInput{Email: "grace.hopper@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "grace.hopper", u.Name)
}

func TestUserService_SignInWithGoogle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	linked, err := env.users.SignInWithGoogle(ctx, auth.GoogleProfile{ID: "g-ada", Email: "ada@example.com", EmailVerified: true, Picture: "https://img/ada"})
	require.NoError(t, err)
	assert.Equal(t, env.userID, linked.ID)
	assert.Equal(t, "https://img/ada", linked.AvatarURL)

	again, err := env.users.SignInWithGoogle(ctx, auth.GoogleProfile{ID: "g-ada", Email: "changed@example.com"})
	require.NoError(t, err)
	assert.Equal(t, env.userID, again.ID)

	fresh, err := env.users.SignInWithGoogle(ctx, auth.GoogleProfile{ID: "g-new", Email: "new@example.com", Name: "Newcomer"})
	require.NoError(t, err)
	assert.NotEqual(t, env.userID, fresh.ID)
	assert.Equal(t, "Newcomer", fresh.Name)

	// Google-only accounts cannot sign in with a password
	_, err = env.users.Authenticate(ctx, "new@example.com", "anything123")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.UpdateProfile(ctx, env.userID, core.ProfileUpdate{Name: ptr("Ada L."), Currency: ptr("eur")})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", u.Name)
	assert.Equal(t, "EUR", u.Currency)

	_, err = env.users.UpdateProfile(ctx, env.userID, core.ProfileUpdate{Currency: ptr("euro")})
	assert.Equal(t, core.OutcomeValidationFailed, core.OutcomeOf(err))

	_, err = env.users.UpdateProfile(ctx, "missing", core.ProfileUpdate{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestActivityService_RecordAndRecent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		ev := amqp.NewDomainEvent(env.userID, core.ActionCreated, core.EntityExpense, i, i*100)
		ev.Timestamp = fixedNow.Add(-time24h(i))
		_, err := env.activity.Record(ctx, ev)
		require.NoError(t, err)
	}
	_, err := env.activity.Record(ctx, amqp.NewDomainEvent("someone-else", core.ActionDeleted, core.EntityIncome, 9, 0))
	require.NoError(t, err)

	recent, err := env.activity.Recent(ctx, env.userID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(1), recent[0].EntityID)
	assert.Equal(t, int64(2), recent[1].EntityID)

	all, err := env.activity.Recent(ctx, env.userID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func time24h(days int64) time.Duration { return time.Duration(days) * 24 * time.Hour }
