// Package neutron is the router directory client: it lists the router
// resources owned by the network-management service.
//
// Only listing is implemented. Authorization failures are translated into
// ErrUnauthorized and ErrForbidden so callers can tell them apart from
// transient failures without depending on gophercloud's error types.
package neutron

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/routers"
)

var (
	// ErrUnauthorized is returned when the service rejects our credentials (HTTP 401).
	ErrUnauthorized = errors.New("neutron: unauthorized")

	// ErrForbidden is returned when the credentials lack permission (HTTP 403).
	ErrForbidden = errors.New("neutron: forbidden")
)

// IsAuthError reports whether err is an authorization failure. Retrying such
// an error never helps.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// Router is the subset of a router resource the relay layer cares about.
type Router struct {
	ID           string
	TenantID     string
	Name         string
	Status       string
	AdminStateUp bool
}

// AuthConfig holds the Keystone credentials used to reach neutron.
type AuthConfig struct {
	AuthURL     string
	Username    string
	Password    string
	ProjectName string
	DomainName  string
	Region      string
}

// Client lists routers through a gophercloud network service client.
type Client struct {
	network *gophercloud.ServiceClient
}

// NewClient wraps an already configured network service client.
func NewClient(network *gophercloud.ServiceClient) *Client {
	return &Client{network: network}
}

// Connect authenticates against Keystone and resolves the network endpoint
// from the service catalog.
func Connect(ctx context.Context, cfg AuthConfig) (*Client, error) {
	opts := gophercloud.AuthOptions{
		IdentityEndpoint: cfg.AuthURL,
		Username:         cfg.Username,
		Password:         cfg.Password,
		TenantName:       cfg.ProjectName,
		DomainName:       cfg.DomainName,
		AllowReauth:      true,
	}

	provider, err := openstack.AuthenticatedClient(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate against %s: %w", cfg.AuthURL, classify(err))
	}

	network, err := openstack.NewNetworkV2(provider, gophercloud.EndpointOpts{Region: cfg.Region})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network endpoint: %w", err)
	}

	return NewClient(network), nil
}

// ListRouters returns every router visible to the configured credentials,
// in the order the service returned them.
func (c *Client) ListRouters(ctx context.Context) ([]Router, error) {
	return c.list(ctx, routers.ListOpts{})
}

// ListTenantRouters returns the routers owned by a single tenant.
func (c *Client) ListTenantRouters(ctx context.Context, tenantID string) ([]Router, error) {
	return c.list(ctx, routers.ListOpts{TenantID: tenantID})
}

func (c *Client) list(ctx context.Context, opts routers.ListOpts) ([]Router, error) {
	pages, err := routers.List(c.network, opts).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list routers: %w", classify(err))
	}

	raw, err := routers.ExtractRouters(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to decode routers: %w", err)
	}

	result := make([]Router, 0, len(raw))
	for _, r := range raw {
		result = append(result, fromGophercloud(r))
	}
	return result, nil
}

func fromGophercloud(r routers.Router) Router {
	tenantID := r.TenantID
	if tenantID == "" {
		tenantID = r.ProjectID
	}
	return Router{
		ID:           r.ID,
		TenantID:     tenantID,
		Name:         r.Name,
		Status:       r.Status,
		AdminStateUp: r.AdminStateUp,
	}
}

// classify attaches ErrUnauthorized or ErrForbidden to authorization
// failures and leaves everything else untouched.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case gophercloud.ResponseCodeIs(err, http.StatusUnauthorized):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case gophercloud.ResponseCodeIs(err, http.StatusForbidden):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	default:
		return err
	}
}
