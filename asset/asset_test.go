package asset

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/agentwire/agentwire/core"
)

// Interface compliance (compile-time assertion)
var _ Loader = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveLoadIsolation(t *testing.T) {
	store := NewInMemoryStore()
	contents := []core.Content{core.NewUserText("hello")}
	store.Save("docs/a", contents...)

	// mutate the original slice
	contents[0] = core.NewUserText("changed")

	out, err := store.Load(context.Background(), "docs/a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out[0].Text() != "hello" {
		t.Fatalf("expected 'hello', got %q", out[0].Text())
	}
}

func TestInMemoryStore_NotFound(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Load(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStore_CanceledContext(t *testing.T) {
	store := NewInMemoryStore()
	store.Save("docs/a", core.NewUserText("hi"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Load(ctx, "docs/a"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	store := NewInMemoryStore()
	store.Save("a", core.NewUserText("1"))
	store.Save("b", core.NewUserText("2"))
	if got := len(store.List()); got != 2 {
		t.Fatalf("expected 2 paths, got %d", got)
	}
	if err := store.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := len(store.List()); got != 1 {
		t.Fatalf("expected 1 path after delete, got %d", got)
	}
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("p%d", i%10)
			store.Save(path, core.NewUserText("data"))
			_, _ = store.Load(context.Background(), path)
		}(i)
	}
	wg.Wait()
	if len(store.List()) == 0 {
		t.Fatal("expected some assets, got 0")
	}
}
