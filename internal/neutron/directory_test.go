package neutron

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ConnectsOnceAndRetriesFailedConnect(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, routerListJSON)
	})

	keystoneDown := errors.New("connection refused")
	connects := 0

	d := NewDirectory(AuthConfig{AuthURL: "http://keystone:5000/v3"})
	d.connect = func(_ context.Context, auth AuthConfig) (*Client, error) {
		connects++
		assert.Equal(t, "http://keystone:5000/v3", auth.AuthURL)
		if connects == 1 {
			return nil, keystoneDown
		}
		return client, nil
	}

	_, err := d.ListRouters(context.Background())
	require.ErrorIs(t, err, keystoneDown)

	got, err := d.ListRouters(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = d.ListTenantRouters(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, 2, connects, "a successful connection is reused")
}

func TestDirectory_AuthFailureOnConnect(t *testing.T) {
	d := NewDirectory(AuthConfig{})
	d.connect = func(context.Context, AuthConfig) (*Client, error) {
		return nil, fmt.Errorf("failed to authenticate: %w", ErrUnauthorized)
	}

	_, err := d.ListRouters(context.Background())
	assert.True(t, IsAuthError(err))
}
