package format

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestJSONFormat_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
		value    any
	}{
		{"plain string", false, "hello"},
		{"plain number", false, float64(42)},
		{"plain object", false, map[string]any{"loss": 0.25, "epochs": float64(3)}},
		{"plain array", false, []any{"a", "b", "c"}},
		{"compressed object", true, map[string]any{"tokens": []any{"x", "y"}}},
		{"compressed nil", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			f := NewJSONFormat(tt.compress)
			ctx := context.Background()

			if err := fsys.MkdirAll("/entry", 0o755); err != nil {
				t.Fatalf("MkdirAll() error = %v", err)
			}
			if err := f.Write(ctx, fsys, tt.value, "/entry"); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			got, err := f.Read(ctx, fsys, "/entry")
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("Read() = %#v, want %#v", got, tt.value)
			}
		})
	}
}

func TestJSONFormat_ReadMissingArtifact(t *testing.T) {
	fsys := afero.NewMemMapFs()
	f := NewJSONFormat(false)

	_, err := f.Read(context.Background(), fsys, "/empty")
	if !errors.Is(err, ErrNoArtifact) {
		t.Errorf("Read() error = %v, want ErrNoArtifact", err)
	}
}

func TestJSONFormat_UnsupportedValue(t *testing.T) {
	fsys := afero.NewMemMapFs()
	f := NewJSONFormat(false)

	tests := []struct {
		name  string
		value any
	}{
		{"func value", func() {}},
		{"chan value", make(chan int)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Write(context.Background(), fsys, tt.value, "/entry")
			if !errors.Is(err, ErrUnsupportedValue) {
				t.Errorf("Write() error = %v, want ErrUnsupportedValue", err)
			}
		})
	}
}

func TestJSONFormat_ArtifactName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	ctx := context.Background()

	if err := NewJSONFormat(false).Write(ctx, fsys, "v", "/plain"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := NewJSONFormat(true).Write(ctx, fsys, "v", "/gz"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if ok, _ := afero.Exists(fsys, "/plain/data.json"); !ok {
		t.Error("plain format should write data.json")
	}
	if ok, _ := afero.Exists(fsys, "/gz/data.json.gz"); !ok {
		t.Error("compressed format should write data.json.gz")
	}
}

func TestJSONFormat_CancelledContext(t *testing.T) {
	fsys := afero.NewMemMapFs()
	f := NewJSONFormat(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.Write(ctx, fsys, "v", "/entry"); err == nil {
		t.Error("Write() with cancelled context should fail")
	}
	if _, err := f.Read(ctx, fsys, "/entry"); err == nil {
		t.Error("Read() with cancelled context should fail")
	}
}
