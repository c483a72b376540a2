package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

func findFreePort(t *testing.T) int {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer lis.Close()

	return lis.Addr().(*net.TCPAddr).Port
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body of %s: %v", url, err)
	}
	return resp.StatusCode, string(body)
}

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "http")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	srv := startMetricsServer(ctx, addr, logger, healthHandler)
	if srv == nil {
		t.Fatal("startMetricsServer should not return nil")
	}

	// Даём время на запуск.
	time.Sleep(100 * time.Millisecond)

	base := fmt.Sprintf("http://%s", addr)

	code, body := getBody(t, base+"/metrics")
	if code != http.StatusOK {
		t.Errorf("expected status 200 for /metrics, got %d", code)
	}
	if body == "" {
		t.Error("/metrics should return non-empty response")
	}

	if code, _ := getBody(t, base+"/healthz"); code != http.StatusOK {
		t.Errorf("expected status 200 for /healthz, got %d", code)
	}

	code, body = getBody(t, base+"/livez")
	if code != http.StatusOK {
		t.Errorf("expected status 200 for /livez, got %d", code)
	}
	if body != "ok" {
		t.Errorf("expected 'ok' from /livez, got %q", body)
	}

	if code, _ := getBody(t, base+"/readyz"); code != http.StatusOK {
		t.Errorf("expected status 200 for /readyz, got %d", code)
	}
}

func TestStartMetricsServer_Shutdown(t *testing.T) {
	logger := log.WithField("test", "http-shutdown")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	startMetricsServer(ctx, addr, logger, healthHandler)

	time.Sleep(100 * time.Millisecond)

	url := fmt.Sprintf("http://%s/livez", addr)
	if code, _ := getBody(t, url); code != http.StatusOK {
		t.Fatalf("expected running server before cancel, got %d", code)
	}

	cancel()
	time.Sleep(200 * time.Millisecond)

	if _, err := http.Get(url); err == nil {
		t.Error("expected request to fail after shutdown")
	}
}
