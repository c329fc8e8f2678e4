package einsteinbridge

import (
	"context"
	"net/http"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
)

func (b *EinsteinBridge) Probe(ctx context.Context, creds bridge.Credentials) error {
	req, err := b.newRequest(ctx, http.MethodGet, b.Config.LivenessURL, nil, &creds)
	if err != nil {
		return bridge.NewError(bridge.Authentication, "Failed to authenticate. Invalid username or password.", err)
	}
	_, err = b.do(req, bridge.Authentication, "Failed to authenticate. Invalid username or password.")
	return err
}

func (b *EinsteinBridge) FetchManifest(ctx context.Context) (string, error) {
	req, err := b.newRequest(ctx, http.MethodGet, b.Config.ManifestURL, nil, nil)
	if err != nil {
		return "", bridge.NewError(bridge.Fetch, "Failed to fetch tasks.", err)
	}
	body, err := b.do(req, bridge.Fetch, "Failed to fetch tasks.")
	if err != nil {
		return "", err
	}
	return string(body), nil
}
