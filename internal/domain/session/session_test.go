package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/storefront-client/internal/auth"
	"github.com/example/storefront-client/internal/infrastructure/store"
	"github.com/example/storefront-client/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHolder() (*Holder, *mocks.MockKV) {
	kv := mocks.NewMockKV()
	return NewHolder(kv), kv
}

func issueToken(t *testing.T, expiry time.Duration) string {
	t.Helper()
	token, _, err := auth.NewJWTService("session-test-secret", expiry).
		GenerateAccessToken(auth.Claims{UserID: "u-1", Email: "ada@example.com"})
	require.NoError(t, err)
	return token
}

func TestHolder_GuestByDefault(t *testing.T) {
	h, _ := newTestHolder()

	s, err := h.Current(context.Background())

	require.NoError(t, err)
	assert.Nil(t, s)

	token, err := h.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestHolder_StartAndCurrent(t *testing.T) {
	h, kv := newTestHolder()
	ctx := context.Background()
	token := issueToken(t, time.Hour)

	err := h.Start(ctx, Session{Token: token, Email: "ada@example.com", Role: "CUSTOMER"})
	require.NoError(t, err)

	s, err := h.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, token, s.Token)
	assert.Equal(t, "ada@example.com", s.Email)
	assert.False(t, s.IsAdmin())

	assert.True(t, kv.Has(store.SlotToken))
	assert.True(t, kv.Has(store.SlotUser))
	assert.NotContains(t, string(kv.SetCalls[1].Value), token, "token is kept out of the user slot")
}

func TestHolder_StartRequiresToken(t *testing.T) {
	h, kv := newTestHolder()

	err := h.Start(context.Background(), Session{Email: "ada@example.com"})

	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Empty(t, kv.SetCalls)
}

func TestHolder_OpaqueTokenNeverExpires(t *testing.T) {
	h, _ := newTestHolder()
	ctx := context.Background()
	require.NoError(t, h.Start(ctx, Session{Token: "opaque", Email: "ada@example.com"}))

	s, err := h.Current(ctx)

	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "opaque", s.Token)
}

func TestHolder_ExpiredTokenEndsSession(t *testing.T) {
	h, kv := newTestHolder()
	ctx := context.Background()
	require.NoError(t, h.Start(ctx, Session{Token: issueToken(t, time.Hour), Email: "ada@example.com"}))
	h.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	s, err := h.Current(ctx)

	require.NoError(t, err)
	assert.Nil(t, s)
	assert.False(t, kv.Has(store.SlotToken))
	assert.False(t, kv.Has(store.SlotUser))
}

func TestHolder_EndKeepsGuestCart(t *testing.T) {
	h, kv := newTestHolder()
	ctx := context.Background()
	kv.Put(store.SlotGuestCart, []byte(`[{"variant_id":7,"quantity":1}]`))
	require.NoError(t, h.Start(ctx, Session{Token: "t", Email: "ada@example.com"}))

	require.NoError(t, h.End(ctx))

	s, err := h.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.True(t, kv.Has(store.SlotGuestCart))
}

func TestHolder_MalformedUserMetadata(t *testing.T) {
	h, kv := newTestHolder()
	kv.Put(store.SlotToken, []byte("t"))
	kv.Put(store.SlotUser, []byte("{not json"))

	s, err := h.Current(context.Background())

	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "t", s.Token)
	assert.Empty(t, s.Email)
}

func TestHolder_NullUserMetadata(t *testing.T) {
	h, kv := newTestHolder()
	kv.Put(store.SlotToken, []byte("t"))
	kv.Put(store.SlotUser, []byte("null"))

	s, err := h.Current(context.Background())

	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "t", s.Token)
	assert.Empty(t, s.Email)
}

func TestHolder_BackendError(t *testing.T) {
	h, kv := newTestHolder()
	kv.GetErr = errors.New("unavailable")

	_, err := h.Current(context.Background())

	assert.Error(t, err)
}

func TestSession_IsAdmin(t *testing.T) {
	assert.True(t, (&Session{Role: "ADMIN"}).IsAdmin())
	assert.True(t, (&Session{IsStaff: true}).IsAdmin())
	assert.True(t, (&Session{IsSuperuser: true}).IsAdmin())
	assert.False(t, (&Session{Role: "CUSTOMER"}).IsAdmin())
}

func TestSession_Identity(t *testing.T) {
	assert.Equal(t, "ada@example.com", (&Session{Token: "t", Email: "ada@example.com"}).Identity())
	assert.Equal(t, "t", (&Session{Token: "t"}).Identity())
}
