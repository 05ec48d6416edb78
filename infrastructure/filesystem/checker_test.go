package filesystem

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestChecker_Exists(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/clips/song_0-30.mp3", []byte("ID3"), 0644); err != nil {
		t.Fatalf("failed to seed filesystem: %v", err)
	}

	checker := NewChecker(fs)

	if !checker.Exists("/clips/song_0-30.mp3") {
		t.Error("expected existing file to exist")
	}
	if checker.Exists("/clips/missing.mp3") {
		t.Error("expected missing file to not exist")
	}
}

func TestGacheFs_OpenFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := GacheFs{Fs: fs}

	if err := g.MkdirAll("/cache", 0755); err != nil {
		t.Fatalf("MkdirAll() unexpected error: %v", err)
	}

	f, err := g.OpenFile("/cache/cookies.json", os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatalf("OpenFile() unexpected error: %v", err)
	}
	if _, err := f.Write([]byte("[]")); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	f.Close()

	data, err := afero.ReadFile(fs, "/cache/cookies.json")
	if err != nil || string(data) != "[]" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}
}

func TestWriteAtomic(t *testing.T) {
	tests := []struct {
		name      string
		write     func(w io.Writer) error
		wantErr   bool
		wantFile  bool
		wantBytes string
	}{
		{
			name: "moves completed file into place",
			write: func(w io.Writer) error {
				_, err := w.Write([]byte("ID3data"))
				return err
			},
			wantFile:  true,
			wantBytes: "ID3data",
		},
		{
			name: "failed write leaves nothing behind",
			write: func(w io.Writer) error {
				w.Write([]byte("ID3"))
				return errors.New("source stalled")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()

			err := WriteAtomic(fs, "/clips/song_0-30.mp3", tt.write)
			if tt.wantErr != (err != nil) {
				t.Fatalf("WriteAtomic() error = %v, wantErr %v", err, tt.wantErr)
			}

			data, readErr := afero.ReadFile(fs, "/clips/song_0-30.mp3")
			if tt.wantFile {
				if readErr != nil || string(data) != tt.wantBytes {
					t.Errorf("ReadFile() = %q, %v", data, readErr)
				}
			} else if readErr == nil {
				t.Error("expected no output file")
			}

			entries, _ := afero.ReadDir(fs, "/clips")
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), ".part") {
					t.Errorf("temporary file %s left behind", e.Name())
				}
			}
		})
	}
}
