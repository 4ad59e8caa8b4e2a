package store

import (
	"testing"
)

func TestMemoryOnlyStore(t *testing.T) {
	s, err := NewDocumentStore("", "http://cd.local")
	if err != nil {
		t.Fatalf("NewDocumentStore: %v", err)
	}
	defer s.Close()

	if s.Persistent() {
		t.Fatal("memory-only store should not be persistent")
	}
	if _, ok := s.GetDocument("index.htm"); ok {
		t.Fatal("expected miss on empty store")
	}
	if err := s.SaveDocument("index.htm", []byte("<html/>")); err != nil {
		t.Fatal(err)
	}
	data, ok := s.GetDocument("index.htm")
	if !ok || string(data) != "<html/>" {
		t.Fatalf("GetDocument = (%q,%v)", data, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
	s.InvalidateAll()
	if _, ok := s.GetDocument("index.htm"); ok {
		t.Fatal("expected miss after InvalidateAll")
	}
}

func TestPersistentStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewDocumentStore(dir, "/media/cdrom")
	if err != nil {
		t.Fatalf("NewDocumentStore: %v", err)
	}
	if !s.Persistent() {
		t.Fatal("expected persistent store")
	}
	for _, p := range []string{"index.htm", "IHE_PDI/00000011.htm", "data/data.json"} {
		if err := s.SaveDocument(p, []byte("doc:"+p)); err != nil {
			t.Fatalf("SaveDocument(%s): %v", p, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewDocumentStore(dir, "/media/cdrom/")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	data, ok := s.GetDocument("IHE_PDI/00000011.htm")
	if !ok || string(data) != "doc:IHE_PDI/00000011.htm" {
		t.Fatalf("GetDocument after reopen = (%q,%v)", data, ok)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	s.InvalidateAll()
	if s.Len() != 0 {
		t.Fatalf("Len after InvalidateAll = %d", s.Len())
	}
	if _, ok := s.GetDocument("index.htm"); ok {
		t.Fatal("expected miss after InvalidateAll")
	}
}

func TestBundlesAreIsolated(t *testing.T) {
	dir := t.TempDir()

	a, err := NewDocumentStore(dir, "http://a.local")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := NewDocumentStore(dir, "http://b.local")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := a.SaveDocument("index.htm", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.GetDocument("index.htm"); ok {
		t.Fatal("documents leaked across bundles")
	}
}

func TestSavedDocumentIsCopied(t *testing.T) {
	s, _ := NewDocumentStore("", "")
	buf := []byte("abc")
	if err := s.SaveDocument("k.htm", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'x'
	data, _ := s.GetDocument("k.htm")
	if string(data) != "abc" {
		t.Fatalf("store aliased caller buffer: %q", data)
	}
	if err := s.SaveDocument("", nil); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestHashBundleBaseNormalizes(t *testing.T) {
	if hashBundleBase("HTTP://CD.local/") != hashBundleBase("http://cd.local") {
		t.Fatal("expected case and trailing slash to be ignored")
	}
	if len(hashBundleBase("x")) != 12 {
		t.Fatalf("unexpected hash length %d", len(hashBundleBase("x")))
	}
}
