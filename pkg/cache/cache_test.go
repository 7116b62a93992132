package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit || data != nil {
		t.Errorf("NullCache.Get = %q, %v; want miss", data, hit)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "artifact:x"); hit {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "artifact:x", []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "artifact:x")
	if err != nil || !hit {
		t.Fatalf("Get = %v, %v; want hit", hit, err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("Get = %q", data)
	}

	if err := c.Delete(ctx, "artifact:x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:x"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "artifact:x"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "midi:a", []byte("MThd"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "artifact:b", []byte("<svg/>"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	st, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 2 || st.Expired != 1 {
		t.Errorf("Stats = %+v; want 2 entries, 1 expired", st)
	}
	if st.Kinds["artifact"] != 1 || st.Kinds["midi"] != 0 {
		t.Errorf("Kinds = %v", st.Kinds)
	}

	n, err := c.Prune()
	if err != nil || n != 1 {
		t.Fatalf("Prune = %d, %v; want 1", n, err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:b"); !hit {
		t.Error("live entry should survive Prune")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("artifact:x")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "artifact:x"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v; want silent miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"artifact:1", "artifact:2", "navgraph:3"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear = %d, %v; want 3", n, err)
	}
	st, _ := c.Stats()
	if st.Entries != 0 {
		t.Errorf("Entries after Clear = %d", st.Entries)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash) = %d; want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	a1 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg", Width: 800, Unit: 5})
	a2 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "png", Width: 800, Unit: 5})
	a3 := k.ArtifactKey("def", ArtifactKeyOpts{Format: "svg", Width: 800, Unit: 5})
	if a1 == a2 || a1 == a3 {
		t.Error("format and score hash must change the artifact key")
	}
	if !strings.HasPrefix(a1, "artifact:") {
		t.Errorf("ArtifactKey = %q", a1)
	}

	m1 := k.MIDIKey("abc", MIDIKeyOpts{Program: 0})
	m2 := k.MIDIKey("abc", MIDIKeyOpts{Program: 24})
	if m1 == m2 || !strings.HasPrefix(m1, "midi:") {
		t.Errorf("MIDIKey = %q, %q", m1, m2)
	}

	g := k.GraphKey("abc", GraphKeyOpts{Format: "dot"})
	if !strings.HasPrefix(g, "navgraph:") {
		t.Errorf("GraphKey = %q", g)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "v1.2.0:")
	plain := NewDefaultKeyer()

	opts := ArtifactKeyOpts{Format: "svg"}
	if got, want := scoped.ArtifactKey("abc", opts), "v1.2.0:"+plain.ArtifactKey("abc", opts); got != want {
		t.Errorf("ArtifactKey = %q; want %q", got, want)
	}
	if got := scoped.MIDIKey("abc", MIDIKeyOpts{}); !strings.HasPrefix(got, "v1.2.0:midi:") {
		t.Errorf("MIDIKey = %q", got)
	}
	if got := kindOf(scoped.GraphKey("abc", GraphKeyOpts{})); got != "navgraph" {
		t.Errorf("kindOf scoped key = %q", got)
	}
}
