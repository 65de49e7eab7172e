package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfirmServer(t *testing.T, status int, body string, check func(r *http.Request)) *StripeConfirmer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewStripeConfirmer(srv.URL+"/", "pk_test_123", 5*time.Second)
}

func TestIntentID(t *testing.T) {
	id, err := IntentID("pi_3Mtw_secret_abc")
	require.NoError(t, err)
	assert.Equal(t, "pi_3Mtw", id)

	for _, bad := range []string{"", "cs_1", "_secret_abc"} {
		_, err := IntentID(bad)
		assert.ErrorIs(t, err, ErrInvalidClientSecret, bad)
	}
}

func TestStripeConfirmer_Succeeded(t *testing.T) {
	var gotPath, gotAuth, gotSecret, gotMethod string
	c := newConfirmServer(t, http.StatusOK, `{"id":"pi_1","status":"succeeded"}`, func(r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = r.ParseForm()
		gotSecret = r.PostForm.Get("client_secret")
		gotMethod = r.PostForm.Get("payment_method")
	})

	res, err := c.ConfirmPayment(context.Background(), "pi_1_secret_xyz", "pm_card_visa")

	require.NoError(t, err)
	require.NotNil(t, res.Intent)
	assert.Nil(t, res.Error)
	assert.Equal(t, StatusSucceeded, res.Intent.Status)
	assert.Equal(t, "/v1/payment_intents/pi_1/confirm", gotPath)
	assert.Equal(t, "Bearer pk_test_123", gotAuth)
	assert.Equal(t, "pi_1_secret_xyz", gotSecret)
	assert.Equal(t, "pm_card_visa", gotMethod)
}

func TestStripeConfirmer_Declined(t *testing.T) {
	c := newConfirmServer(t, http.StatusPaymentRequired,
		`{"error":{"message":"Your card was declined.","code":"card_declined","type":"card_error"}}`, nil)

	res, err := c.ConfirmPayment(context.Background(), "pi_1_secret_xyz", "pm_card_chargeDeclined")

	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Nil(t, res.Intent)
	assert.Equal(t, "Your card was declined.", res.Error.Message)
	assert.Equal(t, "card_declined", res.Error.Code)
}

func TestStripeConfirmer_RequiresAction(t *testing.T) {
	c := newConfirmServer(t, http.StatusOK, `{"id":"pi_1","status":"requires_action"}`, nil)

	res, err := c.ConfirmPayment(context.Background(), "pi_1_secret_xyz", "pm_card_threeDSecure2Required")

	require.NoError(t, err)
	assert.Equal(t, StatusRequiresAction, res.Intent.Status)
}

func TestStripeConfirmer_UnreadableError(t *testing.T) {
	c := newConfirmServer(t, http.StatusBadGateway, `<html>bad gateway</html>`, nil)

	res, err := c.ConfirmPayment(context.Background(), "pi_1_secret_xyz", "pm_card_visa")

	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestStripeConfirmer_InvalidSecretMakesNoRequest(t *testing.T) {
	called := false
	c := newConfirmServer(t, http.StatusOK, `{}`, func(r *http.Request) { called = true })

	_, err := c.ConfirmPayment(context.Background(), "garbage", "pm_card_visa")

	assert.ErrorIs(t, err, ErrInvalidClientSecret)
	assert.False(t, called)
}

func TestStripeConfirmer_Unreachable(t *testing.T) {
	c := NewStripeConfirmer("http://127.0.0.1:1", "pk", time.Second)

	_, err := c.ConfirmPayment(context.Background(), "pi_1_secret_xyz", "pm_card_visa")

	assert.ErrorIs(t, err, ErrProcessorUnavailable)
}
