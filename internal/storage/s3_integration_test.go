package storage_test

import (
	"bytes"
	"testing"

	"github.com/clockwise-hq/clockwise-web/internal/testutil"
)

func TestS3Storage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := testutil.SetupTestEnvironment(t)
	store := env.Storage
	ctx := env.Ctx

	t.Run("PutAndGetRoundtrip", func(t *testing.T) {
		payload := []byte(`{"total":[{"actCount":3}]}`)
		if err := store.Put(ctx, "reports/roundtrip.json", payload); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := store.Get(ctx, "reports/roundtrip.json")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("Get returned %q, want %q", got, payload)
		}
	})

	t.Run("GetMissingKey", func(t *testing.T) {
		_, err := store.Get(ctx, "reports/does-not-exist.json")
		if err == nil {
			t.Fatal("expected error for missing object")
		}
		if !store.NotFound(err) {
			t.Errorf("NotFound should report true for missing object, got error %v", err)
		}
	})

	t.Run("DeleteThenGet", func(t *testing.T) {
		if err := store.Put(ctx, "reports/ephemeral.json", []byte("{}")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := store.Delete(ctx, "reports/ephemeral.json"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := store.Get(ctx, "reports/ephemeral.json"); err == nil || !store.NotFound(err) {
			t.Errorf("deleted object should be not found, got %v", err)
		}
	})

	t.Run("ListKeysByPrefix", func(t *testing.T) {
		if err := store.Put(ctx, "reports/list-a.json", []byte("{}")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := store.Put(ctx, "other/list-b.json", []byte("{}")); err != nil {
			t.Fatalf("Put: %v", err)
		}

		keys, err := store.ListKeys(ctx, "other/")
		if err != nil {
			t.Fatalf("ListKeys: %v", err)
		}
		if len(keys) != 1 || keys[0] != "other/list-b.json" {
			t.Errorf("ListKeys(other/) = %v, want [other/list-b.json]", keys)
		}
	})
}
