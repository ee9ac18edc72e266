// Package storage keeps uploaded and generated files addressed by key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/pkg/utils"
)

var (
	ErrNotFound   = errors.New("stored file not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage is a flat key/value blob store
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ClientKey builds the key of a client document.
func ClientKey(tenantID, clientID uuid.UUID, filename string) string {
	return path.Join("tenants", tenantID.String(), "clients", clientID.String(),
		uuid.NewString()+"-"+utils.SanitizeFilename(filename))
}

// InvoiceKey builds the key of an invoice artifact (xml, png, pdf).
func InvoiceKey(tenantID uuid.UUID, folio, ext string) string {
	return path.Join("tenants", tenantID.String(), "invoices", utils.SanitizeFilename(folio)+"."+ext)
}

// ContractKey builds the key of a generated contract PDF.
func ContractKey(tenantID, contractID uuid.UUID) string {
	return path.Join("tenants", tenantID.String(), "contracts", contractID.String()+".pdf")
}

// New returns the store for driver: "local" (default) or "memory".
func New(driver, root, publicBaseURL string) (Storage, error) {
	switch driver {
	case "", "local":
		return NewLocal(root, publicBaseURL)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// Local stores files below a root directory
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates the root directory if needed.
func NewLocal(root, publicBaseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// validKey rejects empty keys and any attempt to climb out of the root
func validKey(key string) bool {
	return key != "" && path.Clean("/"+key) != "/" && !strings.Contains(key, "..")
}

func (s *Local) resolve(key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+key))), nil
}

// Put writes r under key, replacing any previous content.
func (s *Local) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	full, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return 0, err
	}
	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		return 0, errors.Join(copyErr, closeErr)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, err
	}
	return n, os.Rename(tmp.Name(), full)
}

// Open returns a reader for key.
func (s *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes key. Missing keys are not an error.
func (s *Local) Delete(_ context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL returns the public address of key.
func (s *Local) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
