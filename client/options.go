package client

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/calwerks/calfacade/internal/httpclient"
	"github.com/joeshaw/envdecode"
)

// Options configures a Client.
type Options struct {
	// RootURL is the DAV root the facade connects to, e.g.
	// "https://cloud.example.com/remote.php/dav/".
	RootURL string

	// HeaderProvider is invoked once per outgoing request and must
	// supply at least the request-token and webcal-caching headers.
	HeaderProvider httpclient.HeaderProvider

	// HTTPClient optionally overrides the underlying client. Its
	// transport is wrapped with the header provider.
	HTTPClient *http.Client

	// Logger receives debug-level wire logging. Defaults to a discard
	// handler.
	Logger *slog.Logger
}

// envOptions is the envdecode view of Options. Defaults can be loaded
// via OptionsFromEnv.
type envOptions struct {
	// ENV: CALDAV_ROOT_URL
	RootURL string `env:"CALDAV_ROOT_URL,required"`
	// ENV: CALDAV_REQUEST_TOKEN
	RequestToken string `env:"CALDAV_REQUEST_TOKEN"`
	// ENV: CALDAV_WEBCAL_CACHING
	WebcalCaching string `env:"CALDAV_WEBCAL_CACHING,default=On"`
}

// OptionsFromEnv builds Options using envdecode, with a header provider
// replaying the decoded request token and caching hint.
func OptionsFromEnv() (Options, error) {
	var cfg envOptions
	if err := envdecode.Decode(&cfg); err != nil {
		return Options{}, fmt.Errorf("failed to decode options from environment: %w", err)
	}
	return Options{
		RootURL:        cfg.RootURL,
		HeaderProvider: StaticHeaderProvider(cfg.RequestToken, cfg.WebcalCaching),
	}, nil
}

// StaticHeaderProvider returns a HeaderProvider injecting a fixed request
// token and webcal caching hint on every request.
func StaticHeaderProvider(requestToken, webcalCaching string) httpclient.HeaderProvider {
	return func() map[string]string {
		return map[string]string{
			"X-Requested-With":           "XMLHttpRequest",
			"X-NC-CalDAV-Webcal-Caching": webcalCaching,
			"requesttoken":               requestToken,
		}
	}
}
