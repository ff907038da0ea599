package neutron

import (
	"context"
	"sync"
)

// Directory is a Client that authenticates on first use. A failed
// authentication is returned from the listing call, so the bootstrapper
// retries it like any other listing failure.
type Directory struct {
	auth    AuthConfig
	connect func(context.Context, AuthConfig) (*Client, error)

	mu     sync.Mutex
	client *Client
}

// NewDirectory creates a Directory for the given credentials.
func NewDirectory(auth AuthConfig) *Directory {
	return &Directory{auth: auth, connect: Connect}
}

// ListRouters lists every router, connecting first if needed.
func (d *Directory) ListRouters(ctx context.Context) ([]Router, error) {
	c, err := d.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListRouters(ctx)
}

// ListTenantRouters lists the routers of one tenant, connecting first if needed.
func (d *Directory) ListTenantRouters(ctx context.Context, tenantID string) ([]Router, error) {
	c, err := d.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListTenantRouters(ctx, tenantID)
}

func (d *Directory) get(ctx context.Context) (*Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}

	c, err := d.connect(ctx, d.auth)
	if err != nil {
		return nil, err
	}
	d.client = c
	return c, nil
}
