package fsstore

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

func TestMapError(t *testing.T) {
	if mapError("op", nil) != nil {
		t.Fatal("nil should stay nil")
	}
	if err := mapError("list", status.Error(codes.PermissionDenied, "rules")); !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("permission denied mapped to %v", err)
	}
	if err := mapError("get", status.Error(codes.NotFound, "gone")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("not found mapped to %v", err)
	}
	other := status.Error(codes.Unavailable, "down")
	if err := mapError("add", other); !errors.Is(err, other) || errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unavailable mapped to %v", err)
	}
}
