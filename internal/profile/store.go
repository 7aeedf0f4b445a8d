package profile

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"jobsonar/internal/logging"
)

// Store keeps one encrypted profile file per user under a data
// directory, with decrypted text cached in memory. File layout is
// cv_<user_id>.enc.
type Store struct {
	cipher *Cipher
	dir    string
	logger logging.Logger

	mu     sync.Mutex
	cached map[int64]string
}

// NewStore creates a profile store rooted at dir
func NewStore(cipher *Cipher, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	return &Store{
		cipher: cipher,
		dir:    dir,
		logger: logging.GetGlobalLogger(),
		cached: make(map[int64]string),
	}, nil
}

func (s *Store) path(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("cv_%d.enc", userID))
}

// Has reports whether a profile is stored for the user
func (s *Store) Has(userID int64) bool {
	_, err := os.Stat(s.path(userID))
	return err == nil
}

// Save encrypts and stores the profile text for a user
func (s *Store) Save(userID int64, text string) error {
	encrypted, err := s.cipher.Encrypt(text)
	if err != nil {
		return fmt.Errorf("failed to encrypt profile: %w", err)
	}

	if err := os.WriteFile(s.path(userID), encrypted, 0600); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}

	s.mu.Lock()
	s.cached[userID] = text
	s.mu.Unlock()

	s.logger.Info("Profile saved", map[string]interface{}{
		"user_id": userID,
		"length":  len(text),
	})
	return nil
}

// Get returns the decrypted profile text for a user. No stored profile
// returns ("", nil); a decryption failure returns an error so the user
// can be told to re-upload rather than silently matching nothing.
func (s *Store) Get(userID int64) (string, error) {
	s.mu.Lock()
	if text, ok := s.cached[userID]; ok {
		s.mu.Unlock()
		return text, nil
	}
	s.mu.Unlock()

	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read profile file: %w", err)
	}

	text, err := s.cipher.Decrypt(data)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt profile for user %d: %w", userID, err)
	}

	s.mu.Lock()
	s.cached[userID] = text
	s.mu.Unlock()
	return text, nil
}

// Clear deletes the stored profile, overwriting the file with random
// bytes first. Returns false when no profile existed.
func (s *Store) Clear(userID int64) (bool, error) {
	s.mu.Lock()
	delete(s.cached, userID)
	s.mu.Unlock()

	path := s.path(userID)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat profile file: %w", err)
	}

	scrub := make([]byte, info.Size())
	if _, err := rand.Read(scrub); err == nil {
		_ = os.WriteFile(path, scrub, 0600)
	}

	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to delete profile file: %w", err)
	}

	s.logger.Info("Profile deleted", map[string]interface{}{"user_id": userID})
	return true, nil
}

// Users returns the IDs of all users with a stored profile
func (s *Store) Users() []int64 {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var users []int64
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "cv_") || !strings.HasSuffix(name, ".enc") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "cv_"), ".enc"), 10, 64)
		if err != nil {
			continue
		}
		users = append(users, id)
	}
	return users
}
