package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/palantir/angellist-enrichment-connector/internal/mockfoundry"
)

func main() {
	addr := defaultString("MOCK_FOUNDRY_ADDR", ":8080")
	inputDir := defaultString("MOCK_FOUNDRY_INPUT_DIR", "/data/inputs")
	streamRIDs := defaultString("MOCK_FOUNDRY_STREAM_RIDS", "")
	token := defaultString("MOCK_FOUNDRY_TOKEN", "")

	fs := flag.NewFlagSet("mock-foundry", flag.ExitOnError)
	fs.StringVar(&addr, "addr", addr, "Listen address")
	fs.StringVar(&inputDir, "input-dir", inputDir, "Directory containing request CSVs named <rid>.csv")
	fs.StringVar(&streamRIDs, "stream-rids", streamRIDs, "Comma-separated RIDs to treat as clue output streams (also supports env: MOCK_FOUNDRY_STREAM_RIDS)")
	fs.StringVar(&token, "token", token, "Bearer token to require; empty accepts any (also supports env: MOCK_FOUNDRY_TOKEN)")
	_ = fs.Parse(os.Args[1:])

	srv := mockfoundry.New(inputDir)
	srv.RequireBearerToken(token)
	for _, rid := range splitCSV(streamRIDs) {
		srv.CreateStream(rid)
	}

	_, _ = fmt.Fprintf(os.Stdout, "mock-foundry listening on %s (input=%s)\n", addr, inputDir)
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
