// Package session keeps the signed-in session: an in-memory holder for the
// live session and a small on-disk store for the refresh token so login
// survives restarts.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// lightweight per-user token store (file, 0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but avoids plain-text tokens on disk.

const fileName = "session.json"

var ErrNotFound = fmt.Errorf("session: no stored token")

type tokenFile struct {
	RefreshToken string `json:"refresh_token"` // base64(ciphertext)
}

// Store persists one refresh token under dir.
type Store struct {
	dir string
}

// NewStore places the token file under the user config dir.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(dir, "gymdesk")), nil
}

// NewStoreAt uses an explicit directory. Mostly for tests.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// Save encrypts and writes the refresh token.
func (s *Store) Save(refreshToken string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil { // restrict directory
		return err
	}
	ct, err := encrypt([]byte(refreshToken))
	if err != nil {
		return err
	}
	tf := tokenFile{RefreshToken: base64.StdEncoding.EncodeToString(ct)}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	path := s.path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads and decrypts the stored refresh token. ErrNotFound when no
// token has been saved.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", err
	}
	if tf.RefreshToken == "" {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(tf.RefreshToken)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// Clear removes the stored token. Absent file is fine.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) path() string {
	return filepath.Join(s.dir, fileName)
}

func masterKey() []byte {
	user := os.Getenv("USER")
	base := fmt.Sprintf("gymdesk-%s-%s", runtime.GOOS, user)
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
