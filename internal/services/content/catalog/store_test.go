package catalog

import (
	"fmt"
	"sync"
	"testing"
)

func mustDocument(t *testing.T, raw string) Document {
	t.Helper()
	doc, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return doc
}

func TestIndexKeepsFirstPositionOnOverwrite(t *testing.T) {
	index := NewIndex()
	index.Put(mustDocument(t, `{"id":"a","v":1}`))
	index.Put(mustDocument(t, `{"id":"b","v":1}`))
	if replaced := index.Put(mustDocument(t, `{"id":"a","v":2}`)); !replaced {
		t.Fatal("expected overwrite to be reported")
	}

	ids := index.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v, want [a b]", ids)
	}
	doc, _ := index.Get("a")
	if string(doc.Raw) != `{"id":"a","v":2}` {
		t.Fatalf("a = %s, want last write", doc.Raw)
	}
}

func TestZeroIndexPut(t *testing.T) {
	var index Index
	index.Put(mustDocument(t, `{"id":"a"}`))
	if index.Len() != 1 {
		t.Fatalf("len = %d, want 1", index.Len())
	}
}

func TestStoreBeforePublish(t *testing.T) {
	store := NewStore()
	if store.Ready() {
		t.Fatal("store should not be ready")
	}
	if docs := store.GetAll(); len(docs) != 0 {
		t.Fatalf("GetAll() = %v, want empty", docs)
	}
	if _, ok := store.GetByID("x"); ok {
		t.Fatal("expected absent before publish")
	}
	if store.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", store.Len())
	}
}

func TestStoreSetAllGetAllGetByID(t *testing.T) {
	index := NewIndex()
	index.Put(mustDocument(t, `{"id":"x","name":"Foo"}`))
	index.Put(mustDocument(t, `{"id":"y","name":"Bar"}`))

	store := NewStore()
	store.SetAll(index)

	if !store.Ready() {
		t.Fatal("store should be ready")
	}
	all := store.GetAll()
	if len(all) != 2 || all[0].ID != "x" || all[1].ID != "y" {
		t.Fatalf("GetAll() = %v", all)
	}
	foo, ok := store.GetByID("x")
	if !ok {
		t.Fatal("expected x")
	}
	fields, err := foo.Fields()
	if err != nil || fields["name"] != "Foo" {
		t.Fatalf("x fields = %v, %v", fields, err)
	}
	if _, ok := store.GetByID("z"); ok {
		t.Fatal("expected z to be absent")
	}
}

func TestStoreSetAllIsolatedFromLaterIndexMutation(t *testing.T) {
	index := NewIndex()
	index.Put(mustDocument(t, `{"id":"x"}`))

	store := NewStore()
	store.SetAll(index)
	index.Put(mustDocument(t, `{"id":"late"}`))

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}

func TestStoreSetAllReplacesWholesale(t *testing.T) {
	first := NewIndex()
	first.Put(mustDocument(t, `{"id":"a"}`))
	second := NewIndex()
	second.Put(mustDocument(t, `{"id":"b"}`))

	store := NewStore()
	store.SetAll(first)
	store.SetAll(second)

	if _, ok := store.GetByID("a"); ok {
		t.Fatal("expected a to be gone after replacement")
	}
	if _, ok := store.GetByID("b"); !ok {
		t.Fatal("expected b after replacement")
	}

	store.SetAll(nil)
	if store.Ready() {
		t.Fatal("expected SetAll(nil) to unpublish")
	}
}

func TestNilStoreReads(t *testing.T) {
	var store *Store
	if store.Ready() || store.Len() != 0 || store.GetAll() != nil {
		t.Fatal("nil store should read as empty")
	}
	if _, ok := store.GetByID("x"); ok {
		t.Fatal("nil store should report absent")
	}
}

func TestStoreReadersSeeNothingOrEverything(t *testing.T) {
	const size = 200
	index := NewIndex()
	for i := 0; i < size; i++ {
		index.Put(mustDocument(t, fmt.Sprintf(`{"id":"d%d"}`, i)))
	}

	store := NewStore()
	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if n := len(store.GetAll()); n != 0 && n != size {
					errs <- fmt.Sprintf("observed partial store of %d documents", n)
					return
				}
			}
		}()
	}
	store.SetAll(index)
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}
