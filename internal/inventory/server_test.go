package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func startBufServer(t *testing.T, src Source, session string) *bufconn.Listener {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(src, ServerOptions{Session: session})
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("serve: %v", err)
		}
	})
	return lis
}

func dialBuf(t *testing.T, lis *bufconn.Listener, session string) *GRPCSource {
	t.Helper()
	src, err := NewGRPCSource(GRPCOptions{
		Address: "passthrough:///bufnet",
		Session: session,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func TestGRPCRoundTrip(t *testing.T) {
	files := NewFileSource(writeFixtures(t))
	lis := startBufServer(t, files, "token")
	client := dialBuf(t, lis, "token")
	ctx := context.Background()

	wantManifest, _ := files.Catalog(ctx)
	gotManifest, err := client.Catalog(ctx)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if diff := cmp.Diff(wantManifest, gotManifest); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}

	wantNodes, _ := files.Nodes(ctx)
	gotNodes, err := client.Nodes(ctx)
	if err != nil {
		t.Fatalf("nodes: %v", err)
	}
	if diff := cmp.Diff(wantNodes, gotNodes); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}

	wantData, _ := files.NodeData(ctx, wantNodes[1].ID)
	gotData, err := client.NodeData(ctx, wantNodes[1].ID)
	if err != nil {
		t.Fatalf("node data: %v", err)
	}
	if diff := cmp.Diff(wantData, gotData); diff != "" {
		t.Fatalf("node data mismatch (-want +got):\n%s", diff)
	}

	if _, err := client.NodeData(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGRPCUnauthenticated(t *testing.T) {
	lis := startBufServer(t, NewFileSource(writeFixtures(t)), "token")
	client := dialBuf(t, lis, "wrong")
	if _, err := client.Nodes(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
