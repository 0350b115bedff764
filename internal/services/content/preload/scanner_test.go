package preload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	apperrors "github.com/louisbranch/dragon.arena/internal/platform/errors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadAllEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "category-a/x.json", `{"id":"x","name":"Foo"}`)
	writeFile(t, root, "category-b/y.json", `{"id":"y","name":"Bar"}`)

	index, err := NewScanner(root, WithLogf(nil)).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if index.Len() != 2 {
		t.Fatalf("len = %d, want 2", index.Len())
	}
	x, ok := index.Get("x")
	if !ok {
		t.Fatal("expected x")
	}
	fields, err := x.Fields()
	if err != nil || fields["name"] != "Foo" {
		t.Fatalf("x = %v, %v", fields, err)
	}
	if _, ok := index.Get("z"); ok {
		t.Fatal("expected z to be absent")
	}
}

func TestLoadAllSkipsNonJSONAndNestedEntries(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md":                    {Data: []byte("top-level files are ignored")},
		"loose.json":                   {Data: []byte(`{"id":"loose"}`)},
		"fire/ember.json":              {Data: []byte(`{"id":"ember"}`)},
		"fire/notes.txt":               {Data: []byte("not json")},
		"fire/nested/deep.json":        {Data: []byte(`{"id":"deep"}`)},
		"water/tide.json":              {Data: []byte(`{"id":"tide"}`)},
		"water/tide.json.bak":          {Data: []byte("{")},
		"empty/.keep":                  {Data: nil},
		"water/archive.json/item.json": {Data: []byte(`{"id":"archived"}`)},
	}

	index, err := NewFSScanner("mem", fsys, WithLogf(nil)).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	ids := index.IDs()
	want := []string{"ember", "tide"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestLoadAllCollisionLastInEnumerationOrderWins(t *testing.T) {
	fsys := fstest.MapFS{
		"category-a/x.json": {Data: []byte(`{"id":"x","name":"First"}`)},
		"category-b/x.json": {Data: []byte(`{"id":"x","name":"Second"}`)},
	}

	var notices []string
	logf := func(format string, args ...any) { notices = append(notices, format) }
	index, err := NewFSScanner("mem", fsys, WithLogf(logf), WithWorkers(2)).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if index.Len() != 1 {
		t.Fatalf("len = %d, want exactly one entry", index.Len())
	}
	doc, _ := index.Get("x")
	fields, err := doc.Fields()
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if fields["name"] != "Second" {
		t.Fatalf("name = %v, want Second", fields["name"])
	}
	if len(notices) != 1 {
		t.Fatalf("expected one collision notice, got %d", len(notices))
	}
}

func TestLoadAllMergeOrderIsStableAcrossWorkerCounts(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		fsys[name+"/1.json"] = &fstest.MapFile{Data: []byte(`{"id":"` + name + `1"}`)}
		fsys[name+"/2.json"] = &fstest.MapFile{Data: []byte(`{"id":"` + name + `2"}`)}
	}

	var first []string
	for _, workers := range []int{1, 3, 8} {
		index, err := NewFSScanner("mem", fsys, WithWorkers(workers)).LoadAll(context.Background())
		if err != nil {
			t.Fatalf("load all with %d workers: %v", workers, err)
		}
		ids := index.IDs()
		if first == nil {
			first = ids
			continue
		}
		for i := range first {
			if ids[i] != first[i] {
				t.Fatalf("workers=%d ids = %v, want %v", workers, ids, first)
			}
		}
	}
	if first[0] != "a1" || first[len(first)-1] != "f2" {
		t.Fatalf("ids = %v, want enumeration order", first)
	}
}

func TestLoadAllMalformedDocumentFails(t *testing.T) {
	fsys := fstest.MapFS{
		"fire/ember.json":  {Data: []byte(`{"id":"ember"}`)},
		"fire/broken.json": {Data: []byte(`{"id":`)},
	}

	index, err := NewFSScanner("mem", fsys).LoadAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if index != nil {
		t.Fatal("expected no partial index")
	}
	if !apperrors.HasCode(err, apperrors.CodePreloadDecode) {
		t.Fatalf("expected decode code, got %v", err)
	}
	path, ok := apperrors.MetadataValue(err, apperrors.MetadataPath)
	if !ok || filepath.Base(path) != "broken.json" {
		t.Fatalf("path metadata = %q, %t", path, ok)
	}
}

func TestLoadAllMissingIDFails(t *testing.T) {
	fsys := fstest.MapFS{
		"fire/anonymous.json": {Data: []byte(`{"name":"No Id"}`)},
	}

	_, err := NewFSScanner("mem", fsys).LoadAll(context.Background())
	if !apperrors.HasCode(err, apperrors.CodePreloadDecode) {
		t.Fatalf("expected decode code, got %v", err)
	}
}

func TestLoadAllMissingRootFails(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	_, err := NewScanner(root).LoadAll(context.Background())
	if !apperrors.HasCode(err, apperrors.CodePreloadScan) {
		t.Fatalf("expected scan code, got %v", err)
	}
}

func TestLoadAllEmptyRoot(t *testing.T) {
	index, err := NewScanner(t.TempDir()).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if index.Len() != 0 {
		t.Fatalf("len = %d, want 0", index.Len())
	}
}

func TestLoadAllCanceledContext(t *testing.T) {
	fsys := fstest.MapFS{
		"fire/ember.json": {Data: []byte(`{"id":"ember"}`)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFSScanner("mem", fsys).LoadAll(ctx); err == nil {
		t.Fatal("expected canceled scan to fail")
	}
}

func TestLoadAllRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	fsys := fstest.MapFS{
		"fire/ember.json": {Data: []byte(`{"id":"ember"}`)},
	}

	if _, err := NewFSScanner("mem", fsys, WithTracerProvider(tp)).LoadAll(context.Background()); err != nil {
		t.Fatalf("load all: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "preload.LoadAll" {
		t.Fatalf("span name = %q", spans[0].Name())
	}
	var documents int64 = -1
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "preload.documents" {
			documents = attr.Value.AsInt64()
		}
	}
	if documents != 1 {
		t.Fatalf("preload.documents = %d, want 1", documents)
	}
}
