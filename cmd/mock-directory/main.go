package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/palantir/angellist-enrichment-connector/internal/mockdirectory"
)

func main() {
	addr := defaultString("MOCK_DIRECTORY_ADDR", ":8081")
	fixturePath := defaultString("MOCK_DIRECTORY_FIXTURE", "/data/directory.json")
	tokens := defaultString("MOCK_DIRECTORY_TOKENS", "")

	fs := flag.NewFlagSet("mock-directory", flag.ExitOnError)
	fs.StringVar(&addr, "addr", addr, "Listen address")
	fs.StringVar(&fixturePath, "fixture", fixturePath, "JSON fixture with startups, users and roles")
	fs.StringVar(&tokens, "tokens", tokens, "Comma-separated access tokens to accept; empty accepts any (also supports env: MOCK_DIRECTORY_TOKENS)")
	_ = fs.Parse(os.Args[1:])

	fixture, err := mockdirectory.LoadFixture(fixturePath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "fixture error: %v\n", err)
		os.Exit(2)
	}
	srv := mockdirectory.New(fixture)
	srv.RequireTokens(splitCSV(tokens)...)

	_, _ = fmt.Fprintf(os.Stdout, "mock-directory listening on %s (startups=%d users=%d)\n", addr, len(fixture.Startups), len(fixture.Users))
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func defaultString(envVar string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envVar))
	if v == "" {
		return fallback
	}
	return v
}
