package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ledgrio/ledgrio-go/session"
)

var _ session.Repo = (*FileRepo)(nil)

// FileRepo persists the session as a JSON file. When a seal key is
// configured the file contents are sealed with XChaCha20-Poly1305 so the
// refresh token never sits on disk in the clear.
type FileRepo struct {
	path string
	key  []byte // nil when unsealed
}

// NewFileRepo creates a file-backed session repo at path. An empty sealKey
// stores the session unsealed.
func NewFileRepo(path, sealKey string) (*FileRepo, error) {
	if path == "" {
		return nil, errors.New("[NewFileRepo] path is required")
	}
	repo := &FileRepo{path: path}
	if sealKey != "" {
		key := sha256.Sum256([]byte(sealKey))
		repo.key = key[:]
	}
	return repo, nil
}

func (r *FileRepo) Load() (*session.Session, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileRepo.Load] read session file")
	}

	if r.key != nil {
		data, err = r.open(data)
		if err != nil {
			return nil, errors.Wrap(err, "[FileRepo.Load] unseal session file")
		}
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(err, "[FileRepo.Load] decode session file")
	}
	return &sess, nil
}

func (r *FileRepo) Save(sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "[FileRepo.Save] encode session")
	}

	if r.key != nil {
		data, err = r.seal(data)
		if err != nil {
			return errors.Wrap(err, "[FileRepo.Save] seal session")
		}
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] create session directory")
	}

	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] write session file")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] replace session file")
	}
	return nil
}

func (r *FileRepo) Clear() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Clear] remove session file")
	}
	return nil
}

func (r *FileRepo) seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(r.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (r *FileRepo) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(r.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("sealed payload too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
