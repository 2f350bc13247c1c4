// Command smoke issues a token for a host user and checks that every social flow endpoint answers.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/socialflow-api/internal/service"
	"github.com/noah-isme/socialflow-api/pkg/config"
	"github.com/noah-isme/socialflow-api/pkg/sesskey"
)

type target struct {
	method string
	path   string
	status int
	want   string
}

var targets = []target{
	{method: http.MethodGet, path: "/health", status: http.StatusOK, want: "ok"},
	{method: http.MethodGet, path: "/ready", status: http.StatusOK, want: "ready"},
	{method: http.MethodGet, path: "{prefix}/socialflow", status: http.StatusOK, want: "socialflow"},
	{method: http.MethodGet, path: "{prefix}/socialflow/data", status: http.StatusOK, want: `"entries"`},
	{method: http.MethodGet, path: "{prefix}/socialflow/export?format=csv", status: http.StatusOK, want: "Course,Type,Title"},
	{method: http.MethodGet, path: "{prefix}/socialflow/export?format=pdf", status: http.StatusOK, want: "%PDF"},
}

func main() {
	var (
		base    string
		userID  int64
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.Int64Var(&userID, "user", 2, "host user id to issue the token for")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	auth := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: 5 * time.Minute,
		Issuer:            cfg.JWT.Issuer,
	}, sesskey.NewSigner(cfg.Sesskey.Secret, 0), nil)
	token, err := auth.IssueToken(userID, "smoke")
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	failures := 0
	for _, t := range targets {
		url := strings.TrimRight(base, "/") + strings.Replace(t.path, "{prefix}", cfg.APIPrefix, 1)
		status, body, took, err := perform(client, t.method, url, token)
		switch {
		case err != nil:
			failures++
			fmt.Printf("FAIL %-6s %-45s %v\n", t.method, url, err)
		case status != t.status || !strings.Contains(body, t.want):
			failures++
			fmt.Printf("FAIL %-6s %-45s status=%d (%s)\n", t.method, url, status, took)
		default:
			fmt.Printf("ok   %-6s %-45s status=%d (%s)\n", t.method, url, status, took)
		}
	}

	if failures > 0 {
		fmt.Printf("%d of %d checks failed\n", failures, len(targets))
		os.Exit(1)
	}
}

func perform(client *http.Client, method, url, token string) (int, string, time.Duration, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", time.Since(start), err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, "", time.Since(start), err
	}
	return resp.StatusCode, string(body), time.Since(start), nil
}
