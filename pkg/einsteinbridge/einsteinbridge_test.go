package einsteinbridge_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/einsteinbridge"
	"github.com/carlosmiguelsoto/einstein/pkg/einsteinbridge/einsteinbridgetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goodCreds = bridge.Credentials{Username: "jdoe", Password: "secret"}

func setup(t *testing.T) (*einsteinbridgetest.Server, bridge.Bridge) {
	srv := einsteinbridgetest.NewServer()
	t.Cleanup(srv.Close)
	return srv, einsteinbridge.CreateEinsteinBridge(srv.Config())
}

func TestDefaults(t *testing.T) {
	b := einsteinbridge.CreateEinsteinBridge(einsteinbridge.Config{})

	assert.Equal(t, "https://ca116.computing.dcu.ie/einstein/report.html", b.ReportURL("ca116"))
	eb := b.(*einsteinbridge.EinsteinBridge)
	assert.Equal(t, einsteinbridge.DefaultManifestURL, eb.Config.ManifestURL)
	assert.Equal(t, einsteinbridge.DefaultLivenessURL, eb.Config.LivenessURL)
	assert.Equal(t, einsteinbridge.DefaultTimeout, eb.Client.Timeout)
}

func TestProbe(t *testing.T) {
	_, b := setup(t)

	require.NoError(t, b.Probe(context.Background(), goodCreds))

	err := b.Probe(context.Background(), bridge.Credentials{Username: "jdoe", Password: "wrong"})
	require.ErrorIs(t, err, bridge.ErrAuthentication)
	var e *bridge.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusUnauthorized, e.Status)
	assert.True(t, e.Rejected())
}

func TestFetchManifest(t *testing.T) {
	srv, b := setup(t)
	srv.Set(func(s *einsteinbridgetest.Server) { s.Manifest = "abc123 ca116\n" })

	text, err := b.FetchManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123 ca116\n", text)

	srv.Set(func(s *einsteinbridgetest.Server) { s.ManifestStatus = http.StatusServiceUnavailable })
	_, err = b.FetchManifest(context.Background())
	assert.ErrorIs(t, err, bridge.ErrFetch)
}

func TestUploadSendsMultipartFile(t *testing.T) {
	srv, b := setup(t)
	srv.Set(func(s *einsteinbridgetest.Server) { s.UploadBody = "All good, no errors" })

	body, err := b.Upload(context.Background(), "ca116", "task.txt", []byte("print(1)\n"), goodCreds)
	require.NoError(t, err)
	assert.Equal(t, "All good, no errors", body)

	uploads, _, _ := srv.Snapshot()
	require.Len(t, uploads, 1)
	assert.Equal(t, einsteinbridgetest.Upload{
		Module:      "ca116",
		Filename:    "task.txt",
		ContentType: "text/plain",
		Content:     "print(1)\n",
		Username:    "jdoe",
	}, uploads[0])
}

func TestUploadNonSuccess(t *testing.T) {
	srv, b := setup(t)
	srv.Set(func(s *einsteinbridgetest.Server) { s.UploadStatus = http.StatusBadGateway })

	_, err := b.Upload(context.Background(), "ca116", "task.txt", nil, goodCreds)
	require.ErrorIs(t, err, bridge.ErrUpload)
	assert.Contains(t, err.Error(), "Einstein may be down")

	_, err = b.Upload(context.Background(), "ca116", "task.txt", nil, bridge.Credentials{Username: "x", Password: "y"})
	var e *bridge.Error
	require.ErrorAs(t, err, &e)
	assert.True(t, e.Rejected())
}

func TestFetchFailureDetail(t *testing.T) {
	srv, b := setup(t)
	srv.Set(func(s *einsteinbridgetest.Server) {
		s.Detail = einsteinbridgetest.DetailJSON(
			bridge.TestResult{Test: "t1", Correct: true},
			bridge.TestResult{Test: "t2", Stdout: "1", Expected: "2"},
		)
	})

	results, err := b.FetchFailureDetail(context.Background(), "ca117", goodCreds)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "t2", results[1].Test)
	assert.False(t, results[1].Correct)
	assert.Equal(t, "2", results[1].Expected)
}

func TestFetchFailureDetailErrors(t *testing.T) {
	srv, b := setup(t)

	srv.Set(func(s *einsteinbridgetest.Server) { s.Detail = "<html>oops</html>" })
	_, err := b.FetchFailureDetail(context.Background(), "ca117", goodCreds)
	assert.ErrorIs(t, err, bridge.ErrDetailFetch)

	srv.Set(func(s *einsteinbridgetest.Server) { s.DetailStatus = http.StatusInternalServerError })
	_, err = b.FetchFailureDetail(context.Background(), "ca117", goodCreds)
	assert.ErrorIs(t, err, bridge.ErrDetailFetch)
}

func TestBadModuleURLKeepsErrorKind(t *testing.T) {
	_, b := setup(t)

	_, err := b.Upload(context.Background(), "ca%zz", "task.txt", nil, goodCreds)
	assert.ErrorIs(t, err, bridge.ErrUpload)
	assert.Equal(t, http.StatusBadGateway, bridge.HttpCode(err))

	_, err = b.FetchFailureDetail(context.Background(), "ca%zz", goodCreds)
	assert.ErrorIs(t, err, bridge.ErrDetailFetch)

	bad := einsteinbridge.CreateEinsteinBridge(einsteinbridge.Config{
		ManifestURL: "http://%zz/tasks.txt",
		LivenessURL: "http://%zz/now",
	})
	_, err = bad.FetchManifest(context.Background())
	assert.ErrorIs(t, err, bridge.ErrFetch)
	assert.ErrorIs(t, bad.Probe(context.Background(), goodCreds), bridge.ErrAuthentication)
}

func TestOversizedResponseIsAnError(t *testing.T) {
	srv, b := setup(t)
	// one byte over the 8 MiB response limit
	srv.Set(func(s *einsteinbridgetest.Server) { s.UploadBody = strings.Repeat("a", 8<<20+1) })

	_, err := b.Upload(context.Background(), "ca116", "task.txt", []byte("x"), goodCreds)
	assert.ErrorIs(t, err, bridge.ErrUpload)

	srv.Set(func(s *einsteinbridgetest.Server) { s.UploadBody = strings.Repeat("a", 8<<20) })
	body, err := b.Upload(context.Background(), "ca116", "task.txt", []byte("x"), goodCreds)
	require.NoError(t, err)
	assert.Len(t, body, 8<<20)
}
