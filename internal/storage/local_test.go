package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestClient(t *testing.T) *LocalStorageClient {
	t.Helper()
	client, err := NewLocalStorageClient(filepath.Join(t.TempDir(), "exports"))
	if err != nil {
		t.Fatalf("Failed to create LocalStorageClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewLocalStorageClient(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "exports")

	client, err := NewLocalStorageClient(root)
	if err != nil {
		t.Fatalf("Failed to create LocalStorageClient: %v", err)
	}
	defer client.Close()

	if client.RootDir() != root {
		t.Errorf("Expected rootDir %q, got %q", root, client.RootDir())
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("Root directory was not created: %v", err)
	}
}

func TestLocalStorageClient_Close(t *testing.T) {
	client := newTestClient(t)
	if err := client.Close(); err != nil {
		t.Errorf("Close() returned unexpected error: %v", err)
	}
}

func TestLocalStorageClient_CreateDir(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		dirPath string
		wantErr bool
	}{
		{name: "simple directory", dirPath: "run", wantErr: false},
		{name: "nested directory", dirPath: "2025-09-17-14-30-45/png", wantErr: false},
		{name: "parent escape", dirPath: "../outside", wantErr: true},
		{name: "absolute path", dirPath: "/tmp/abs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.CreateDir(ctx, tt.dirPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateDir() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				fullPath := filepath.Join(client.RootDir(), tt.dirPath)
				if _, err := os.Stat(fullPath); err != nil {
					t.Errorf("Directory %s was not created", fullPath)
				}
			}
		})
	}
}

func TestLocalStorageClient_StoreAndGetFile(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	data := []byte("<html>barras</html>")
	if err := client.StoreFile(ctx, "run-1/barras.html", data); err != nil {
		t.Fatalf("StoreFile() error = %v", err)
	}

	got, err := client.GetFile(ctx, "run-1/barras.html")
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetFile() = %q, want %q", got, data)
	}

	if _, err := client.GetFile(ctx, "run-1/missing.html"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLocalStorageClient_FileExists(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if err := client.StoreFile(ctx, "a/box.png", []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("StoreFile() error = %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"a/box.png", true},
		{"a/mapa.png", false},
		{"a", false}, // directories are not files
	}

	for _, tt := range tests {
		got, err := client.FileExists(ctx, tt.path)
		if err != nil {
			t.Errorf("FileExists(%q) error = %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLocalStorageClient_ListDir(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, p := range []string{"run/barras.html", "run/box.html", "run/png/mapa.png"} {
		if err := client.StoreFile(ctx, p, []byte("x")); err != nil {
			t.Fatalf("StoreFile(%q) error = %v", p, err)
		}
	}

	flat, err := client.ListDir(ctx, "run", false)
	if err != nil {
		t.Fatalf("ListDir() error = %v", err)
	}
	wantFlat := []string{"run/barras.html", "run/box.html", "run/png/"}
	if !reflect.DeepEqual(flat, wantFlat) {
		t.Errorf("ListDir(non-recursive) = %v, want %v", flat, wantFlat)
	}

	all, err := client.ListDir(ctx, "run", true)
	if err != nil {
		t.Fatalf("ListDir() error = %v", err)
	}
	wantAll := []string{"run/barras.html", "run/box.html", "run/png/mapa.png"}
	if !reflect.DeepEqual(all, wantAll) {
		t.Errorf("ListDir(recursive) = %v, want %v", all, wantAll)
	}

	if _, err := client.ListDir(ctx, "nope", false); err == nil {
		t.Error("Expected error listing a missing directory")
	}
}
