package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()

	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed creating disk store: %v", err)
	}
	return store
}

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("failed creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("failed reading multipart form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["image"][0]
}

func TestSaveWritesFileAndMarksPending(t *testing.T) {
	store := newTestStore(t)

	content := []byte("image-bytes")
	webPath, err := store.Save(newFileHeader(t, "beach photo.jpg", content), "")
	if err != nil {
		t.Fatalf("failed saving upload: %v", err)
	}

	if !strings.HasPrefix(webPath, WebPrefix+"/") {
		t.Fatalf("expected web path under %s, got %q", WebPrefix, webPath)
	}
	if strings.Contains(webPath, " ") {
		t.Fatalf("expected spaces to be replaced in %q", webPath)
	}
	if !strings.HasSuffix(webPath, "-beach_photo.jpg") {
		t.Fatalf("expected timestamped original name, got %q", webPath)
	}

	diskPath, err := store.Resolve(webPath)
	if err != nil {
		t.Fatalf("failed resolving web path: %v", err)
	}
	stored, err := os.ReadFile(diskPath)
	if err != nil {
		t.Fatalf("failed reading stored file: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Fatal("stored file content does not match the upload")
	}

	if !store.IsPending(webPath) {
		t.Fatal("expected freshly saved file to be pending")
	}
	store.Commit(webPath)
	if store.IsPending(webPath) {
		t.Fatal("expected commit to release the pending mark")
	}
}

func TestSaveIntoSubdir(t *testing.T) {
	store := newTestStore(t)

	webPath, err := store.Save(newFileHeader(t, "avatar.png", []byte("png")), "profiles")
	if err != nil {
		t.Fatalf("failed saving upload: %v", err)
	}
	if !strings.HasPrefix(webPath, WebPrefix+"/profiles/") {
		t.Fatalf("expected web path under %s/profiles, got %q", WebPrefix, webPath)
	}

	diskPath, err := store.Resolve(webPath)
	if err != nil {
		t.Fatalf("failed resolving web path: %v", err)
	}
	if _, err := os.Stat(diskPath); err != nil {
		t.Fatalf("expected file on disk under profiles: %v", err)
	}
}

func TestRemoveDeletesFileAndReleasesPending(t *testing.T) {
	store := newTestStore(t)

	webPath, err := store.Save(newFileHeader(t, "doomed.jpg", []byte("x")), "")
	if err != nil {
		t.Fatalf("failed saving upload: %v", err)
	}

	if err := store.Remove(webPath); err != nil {
		t.Fatalf("failed removing upload: %v", err)
	}
	if store.IsPending(webPath) {
		t.Fatal("expected remove to release the pending mark")
	}

	diskPath, err := store.Resolve(webPath)
	if err != nil {
		t.Fatalf("failed resolving web path: %v", err)
	}
	if _, err := os.Stat(diskPath); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone, stat returned %v", err)
	}

	// Removing an already missing file is not an error.
	if err := store.Remove(webPath); err != nil {
		t.Fatalf("expected second remove to be a no-op, got %v", err)
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	store := newTestStore(t)

	cases := []string{
		"/etc/passwd",
		"uploads/plain.jpg",
		WebPrefix + "/../outside.jpg",
		WebPrefix + "/../../etc/passwd",
		WebPrefix + "/a/../../outside.jpg",
	}
	for _, webPath := range cases {
		if _, err := store.Resolve(webPath); err == nil {
			t.Errorf("expected Resolve(%q) to fail", webPath)
		}
	}

	diskPath, err := store.Resolve(WebPrefix + "/profiles/avatar.png")
	if err != nil {
		t.Fatalf("expected valid path to resolve: %v", err)
	}
	want := filepath.Join(store.Root(), "profiles", "avatar.png")
	if diskPath != want {
		t.Fatalf("resolved to %q, want %q", diskPath, want)
	}
}

func TestWebPathRoundTrip(t *testing.T) {
	store := newTestStore(t)

	diskPath := filepath.Join(store.Root(), "profiles", "avatar.png")
	webPath, err := store.WebPath(diskPath)
	if err != nil {
		t.Fatalf("failed computing web path: %v", err)
	}
	if webPath != WebPrefix+"/profiles/avatar.png" {
		t.Fatalf("got %q", webPath)
	}

	back, err := store.Resolve(webPath)
	if err != nil {
		t.Fatalf("failed resolving web path: %v", err)
	}
	if back != diskPath {
		t.Fatalf("round trip produced %q, want %q", back, diskPath)
	}

	if _, err := store.WebPath(filepath.Join(store.Root(), "..", "outside.jpg")); err == nil {
		t.Fatal("expected path outside the root to be rejected")
	}
}
