package einsteinbridge

import (
	"net/http"
	"strings"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultModuleURL   = "https://{module}.computing.dcu.ie/einstein"
	DefaultManifestURL = "https://einstein.computing.dcu.ie/termcast/tasks.txt"
	DefaultLivenessURL = "https://ca000.computing.dcu.ie/einstein/now"
	DefaultTimeout     = 30 * time.Second

	maxBodySize = 8 << 20
)

type Config struct {
	// ModuleURL is the per-module service root; {module} is replaced by the module code.
	ModuleURL   string
	ManifestURL string
	LivenessURL string
	Timeout     time.Duration
}

type EinsteinBridge struct {
	Config Config
	Client *http.Client
}

func CreateEinsteinBridge(config Config) bridge.Bridge {
	if config.ModuleURL == "" {
		config.ModuleURL = DefaultModuleURL
	}
	if config.ManifestURL == "" {
		config.ManifestURL = DefaultManifestURL
	}
	if config.LivenessURL == "" {
		config.LivenessURL = DefaultLivenessURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &EinsteinBridge{
		Config: config,
		Client: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (b *EinsteinBridge) moduleURL(module bridge.ModuleCode, endpoint string) string {
	root := strings.ReplaceAll(b.Config.ModuleURL, "{module}", module)
	return strings.TrimSuffix(root, "/") + "/" + endpoint
}

func (b *EinsteinBridge) ReportURL(module bridge.ModuleCode) string {
	return b.moduleURL(module, "report.html")
}
