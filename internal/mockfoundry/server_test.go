package mockfoundry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/palantir/angellist-enrichment-connector/internal/mockfoundry"
	"github.com/palantir/angellist-enrichment-connector/pkg/foundry"
)

func newClient(t *testing.T, srv *mockfoundry.Server, token string) *foundry.Client {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := foundry.NewClient(ts.URL+"/api", ts.URL+"/stream-proxy/api", token, "")
	if err != nil {
		t.Fatalf("new foundry client: %v", err)
	}
	return client
}

func TestMockFoundry_ReadTableFromInputDir(t *testing.T) {
	t.Parallel()

	inputDir := t.TempDir()
	rid := "ri.foundry.main.dataset.requests"
	want := "entity_type,name\norganization,Acme\n"
	if err := os.WriteFile(filepath.Join(inputDir, rid+".csv"), []byte(want), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	srv := mockfoundry.New(inputDir)
	srv.RequireBearerToken("tok")
	client := newClient(t, srv, "tok")

	got, err := client.ReadTableCSV(context.Background(), rid, "")
	if err != nil {
		t.Fatalf("readTable: %v", err)
	}
	if string(got) != want {
		t.Fatalf("readTable output mismatch: %q", got)
	}

	_, err = client.ReadTableCSV(context.Background(), "ri.missing", "")
	if foundry.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestMockFoundry_StreamPublishAndRead(t *testing.T) {
	t.Parallel()

	srv := mockfoundry.New("")
	srv.CreateStream("ri.stream")
	client := newClient(t, srv, "tok")
	ctx := context.Background()

	ok, err := client.ProbeStream(ctx, "ri.stream", "")
	if err != nil || !ok {
		t.Fatalf("expected stream, got ok=%v err=%v", ok, err)
	}
	ok, err = client.ProbeStream(ctx, "ri.dataset", "")
	if err != nil || ok {
		t.Fatalf("expected non-stream, got ok=%v err=%v", ok, err)
	}

	if err := client.PublishStreamJSONRecord(ctx, "ri.stream", "", map[string]any{"code": "/Organization#angelList:42"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	recs, err := client.ReadStreamRecords(ctx, "ri.stream", "")
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	if len(recs) != 1 || recs[0]["code"] != "/Organization#angelList:42" {
		t.Fatalf("unexpected records: %#v", recs)
	}
}

func TestMockFoundry_RejectsWrongToken(t *testing.T) {
	t.Parallel()

	srv := mockfoundry.New("")
	srv.RequireBearerToken("good")
	srv.CreateStream("ri.stream")
	client := newClient(t, srv, "bad")

	_, err := client.ProbeStream(context.Background(), "ri.stream", "")
	if foundry.StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
