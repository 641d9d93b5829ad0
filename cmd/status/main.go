// Command status prints the sync state of every mirrored collection by
// querying the feed API of a running mirror client.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/tui"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const (
	statusOperator = "status-cli"
	tokenDuration  = time.Minute
	defaultTimeout = 10 * time.Second
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error getting configs:", err)
		os.Exit(2)
	}

	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	status, err := fetchStatus(ctx, feedBaseURL(cfg.Server.HTTPAddress), cfg.Server, timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(tui.RenderStatus(status))
	fmt.Println(tui.RenderBuildInfo(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)))
}

// fetchStatus mints a short-lived token and reads /api/status.
func fetchStatus(ctx context.Context, baseURL string, cfg config.Server, timeout time.Duration) (models.StatusResponse, error) {
	var status models.StatusResponse
	if baseURL == "" {
		return status, fmt.Errorf("feed API address is not configured")
	}

	token, err := utils.GenerateJWTToken(cfg.TokenIssuer, statusOperator, tokenDuration, cfg.TokenSignKey)
	if err != nil {
		return status, fmt.Errorf("error generating token: %w", err)
	}

	resp, err := utils.NewRemoteHTTPClient(baseURL, token.String(), timeout).R().
		SetContext(ctx).
		SetResult(&status).
		Get("/api/status")
	if err != nil {
		return status, fmt.Errorf("error requesting status: %w", err)
	}
	if resp.IsError() {
		return status, fmt.Errorf("status request failed: %s: %s", resp.Status(), resp.String())
	}

	return status, nil
}

// feedBaseURL turns a listen address such as ":8081" into a dialable URL.
func feedBaseURL(address string) string {
	if address == "" {
		return ""
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return "http://" + address
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}

	return "http://" + net.JoinHostPort(host, port)
}
