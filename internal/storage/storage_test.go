package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lutong-pos/terminal/internal/storage"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	st, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	want := record{Name: "cart", Count: 3}
	if err := st.Save("cart", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got record
	found, err := st.Load("cart", &got)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("record not found after save")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	st, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	got := record{Name: "untouched"}
	found, err := st.Load("absent", &got)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatal("found a record that was never saved")
	}
	if got.Name != "untouched" {
		t.Fatal("Load mutated the destination for a missing key")
	}
}

func TestFileStoreDelete(t *testing.T) {
	st, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := st.Save("cooking", []int64{4, 7}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Delete("cooking"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var ids []int64
	found, err := st.Load("cooking", &ids)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatal("record still present after delete")
	}

	// Deleting a missing key is not an error.
	if err := st.Delete("cooking"); err != nil {
		t.Fatalf("Delete of missing key: %v", err)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := st.Save("cart", record{Count: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Save("cart", record{Count: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got record
	if _, err := st.Load("cart", &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Count != 2 {
		t.Fatalf("got count %d, want 2", got.Count)
	}

	// No temp file left behind after the rename.
	if _, err := os.Stat(filepath.Join(dir, "cart.json.tmp")); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}
}

func TestFileStoreCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "cart.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	var got record
	if _, err := st.Load("cart", &got); err == nil {
		t.Fatal("expected an error for a corrupt record")
	}
}
