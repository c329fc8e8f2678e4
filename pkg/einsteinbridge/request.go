package einsteinbridge

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
)

func (b *EinsteinBridge) newRequest(ctx context.Context, method, url string, body io.Reader, creds *bridge.Credentials) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		req.SetBasicAuth(creds.Username, creds.Password)
	}
	return req, nil
}

// do sends req and returns the body of a 200 response. Any other status is
// reported as a *bridge.Error of the given kind.
func (b *EinsteinBridge) do(req *http.Request, kind bridge.ErrorKind, message string) ([]byte, error) {
	res, err := b.Client.Do(req)
	if err != nil {
		return nil, bridge.NewError(kind, message, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize+1))
	if err != nil {
		return nil, bridge.NewError(kind, message, err)
	}
	if len(body) > maxBodySize {
		return nil, bridge.NewError(kind, message, fmt.Errorf("%s %s: response larger than %d bytes", req.Method, req.URL.Redacted(), maxBodySize))
	}
	if res.StatusCode != http.StatusOK {
		e := bridge.NewError(kind, message, fmt.Errorf("%s %s: status %d", req.Method, req.URL.Redacted(), res.StatusCode))
		e.Status = res.StatusCode
		return nil, e
	}
	return body, nil
}
