package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsonar/internal/embeddings/providers"
	"jobsonar/pkg/utils"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	cipher, err := NewCipher(key)
	require.NoError(t, err)
	return cipher
}

func TestCipherRoundTrip(t *testing.T) {
	cipher := newTestCipher(t)

	encrypted, err := cipher.Encrypt("my cv text with ünïcödé")
	require.NoError(t, err)
	assert.NotContains(t, string(encrypted), "cv text")

	decrypted, err := cipher.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "my cv text with ünïcödé", decrypted)
}

func TestCipherWrongKeyFails(t *testing.T) {
	encrypted, err := newTestCipher(t).Encrypt("secret")
	require.NoError(t, err)

	_, err = newTestCipher(t).Decrypt(encrypted)
	assert.True(t, errors.Is(err, utils.ErrProfileDecrypt))
}

func TestCipherCorruptedData(t *testing.T) {
	cipher := newTestCipher(t)
	_, err := cipher.Decrypt([]byte("short"))
	assert.True(t, errors.Is(err, utils.ErrProfileDecrypt))
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	_, err := NewCipher("not base64 at all!!!")
	assert.Error(t, err)

	_, err = NewCipher("c2hvcnQ=") // valid base64, wrong length
	assert.Error(t, err)
}

func TestStoreSaveGetClear(t *testing.T) {
	store, err := NewStore(newTestCipher(t), t.TempDir())
	require.NoError(t, err)

	assert.False(t, store.Has(42))

	text, err := store.Get(42)
	require.NoError(t, err)
	assert.Empty(t, text, "missing profile reads as empty, not as an error")

	require.NoError(t, store.Save(42, "golang developer cv"))
	assert.True(t, store.Has(42))

	text, err = store.Get(42)
	require.NoError(t, err)
	assert.Equal(t, "golang developer cv", text)

	deleted, err := store.Clear(42)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, store.Has(42))

	deleted, err = store.Clear(42)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStoreDecryptFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(newTestCipher(t), dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(7, "cv"))

	// Same files, different key
	reopened, err := NewStore(newTestCipher(t), dir)
	require.NoError(t, err)

	_, err = reopened.Get(7)
	assert.True(t, errors.Is(err, utils.ErrProfileDecrypt))
}

func TestStoreUsers(t *testing.T) {
	store, err := NewStore(newTestCipher(t), t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(1, "a"))
	require.NoError(t, store.Save(22, "b"))

	users := store.Users()
	assert.ElementsMatch(t, []int64{1, 22}, users)
}

func TestCacheSetReplacesWholeProfile(t *testing.T) {
	cache := NewCache(providers.NewHashingProvider(64))
	ctx := context.Background()

	first, err := cache.Set(ctx, 1, "python developer")
	require.NoError(t, err)
	_, hasPython := first.Skills["python"]
	assert.True(t, hasPython)

	second, err := cache.Set(ctx, 1, "golang developer")
	require.NoError(t, err)
	_, hasGolang := second.Skills["golang"]
	_, stillPython := second.Skills["python"]
	assert.True(t, hasGolang)
	assert.False(t, stillPython)

	assert.Same(t, second, cache.Get(1))
}

func TestCacheLoadFromStore(t *testing.T) {
	cache := NewCache(providers.NewHashingProvider(64))
	store, err := NewStore(newTestCipher(t), t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	loaded, err := cache.Load(ctx, store, 5)
	require.NoError(t, err)
	assert.Nil(t, loaded, "no stored profile loads as nil")

	require.NoError(t, store.Save(5, "react developer"))
	loaded, err = cache.Load(ctx, store, 5)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "react developer", loaded.Text)

	cache.Delete(5)
	assert.Nil(t, cache.Get(5))
}
