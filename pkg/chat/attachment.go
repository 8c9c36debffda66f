package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Attachment references a binary payload on a user message. Only image
// media types are accepted by the message translator.
type Attachment struct {
	// MediaType is the MIME type, e.g. "image/png".
	MediaType string

	// Ref identifies the payload within an AttachmentStore.
	Ref string
}

// AttachmentStore resolves attachment references to raw bytes. It is a
// collaborator contract: the host supplies the implementation.
type AttachmentStore interface {
	Read(ctx context.Context, ref string) ([]byte, error)
}

// FileStore is an AttachmentStore over a directory tree; refs are paths
// relative to the root.
type FileStore struct {
	Root string
}

var _ AttachmentStore = (*FileStore)(nil)

// Read returns the bytes of the file the ref points at. Refs escaping the
// root are rejected.
func (s *FileStore) Read(_ context.Context, ref string) ([]byte, error) {
	clean := filepath.Clean(ref)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("attachment ref %q escapes store root", ref)
	}
	return os.ReadFile(filepath.Join(s.Root, clean))
}
