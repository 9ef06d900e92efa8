package archive

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestS3Storage_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "snapshots/KO.json", "snapshots/KO.json"},
		{"ddm", "snapshots/KO.json", "ddm/snapshots/KO.json"},
		{"ddm/", "snapshots/KO.json", "ddm/snapshots/KO.json"},
		{"/ddm/", "snapshots/KO.json", "ddm/snapshots/KO.json"},
	}

	for _, tt := range tests {
		s := &S3Storage{prefix: strings.Trim(tt.prefix, "/")}
		got := s.key(tt.path)
		if got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
		if rel := s.relative(got); rel != tt.path {
			t.Errorf("relative(%q) = %q, want %q", got, rel, tt.path)
		}
	}
}

func TestNotFound(t *testing.T) {
	if err := notFound("a.json", &types.NoSuchKey{}); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("NoSuchKey should map to fs.ErrNotExist, got %v", err)
	}
	if err := notFound("a.json", &types.NotFound{}); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("NotFound should map to fs.ErrNotExist, got %v", err)
	}

	other := errors.New("access denied")
	if err := notFound("a.json", other); err != other {
		t.Errorf("other errors should pass through, got %v", err)
	}
}
