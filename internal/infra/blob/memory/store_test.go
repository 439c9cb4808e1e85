package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"simonbin/internal/blob/core"
)

func TestStorePutGetDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	info, err := store.Put(ctx, "visits/a/img-0", strings.NewReader("photo"), core.PutOptions{ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 5 || info.ContentType != "image/jpeg" {
		t.Fatalf("info wrong: %+v", info)
	}

	if _, err := store.Put(ctx, "visits/a/img-0", strings.NewReader("dup"), core.PutOptions{}); err == nil {
		t.Fatalf("duplicate key must fail")
	}

	got, rc, err := store.Get(ctx, "visits/a/img-0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "photo" || got.Key != "visits/a/img-0" {
		t.Fatalf("get returned %q, %+v", data, got)
	}

	ok, err := store.Delete(ctx, "visits/a/img-0")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = store.Delete(ctx, "visits/a/img-0")
	if err != nil || ok {
		t.Fatalf("second delete must report missing, ok=%v err=%v", ok, err)
	}
	if _, _, err := store.Get(ctx, "visits/a/img-0"); err == nil {
		t.Fatalf("get after delete must fail")
	}
}

func TestStoreListPrefix(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, key := range []string{"visits/a/1", "visits/a/2", "visits/b/1"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	infos, err := store.List(ctx, "visits/a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "visits/a/1" || infos[1].Key != "visits/a/2" {
		t.Fatalf("prefix list wrong: %+v", infos)
	}

	all, err := store.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("full list wrong: %d err=%v", len(all), err)
	}
	if store.Driver() != core.DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
}
