package credentials

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelk2v/cvforge/pkg/llm"
)

type memRepo struct {
	recs map[string]Record
}

func newMemRepo() *memRepo { return &memRepo{recs: map[string]Record{}} }

func key(scope Scope, p llm.Provider) string {
	return string(scope.Kind) + "/" + scope.OwnerID.String() + "/" + string(p)
}

func (m *memRepo) Get(_ context.Context, scope Scope, p llm.Provider) (Record, error) {
	rec, ok := m.recs[key(scope, p)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memRepo) Upsert(_ context.Context, rec Record) error {
	m.recs[key(rec.Scope, rec.Provider)] = rec
	return nil
}

func (m *memRepo) Delete(_ context.Context, scope Scope, p llm.Provider) error {
	delete(m.recs, key(scope, p))
	return nil
}

func TestDeriveKeyDeterministic(t *testing.T) {
	k1 := DeriveKey([]byte("secret"), []byte("salt"))
	k2 := DeriveKey([]byte("secret"), []byte("salt"))
	k3 := DeriveKey([]byte("secret"), []byte("other-salt"))

	assert.Len(t, k1, 32)
	assert.True(t, bytes.Equal(k1, k2))
	assert.False(t, bytes.Equal(k1, k3))
}

func TestSealOpenRoundTrip(t *testing.T) {
	k := DeriveKey([]byte("secret"), []byte("salt"))
	ciphertext, nonce, err := seal([]byte("sk-ant-api03-topsecret"), k)
	require.NoError(t, err)
	assert.NotContains(t, string(ciphertext), "topsecret")

	plain, err := open(ciphertext, nonce, k)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-api03-topsecret", string(plain))

	// wrong key must not decrypt
	_, err = open(ciphertext, nonce, DeriveKey([]byte("wrong"), []byte("salt")))
	assert.Error(t, err)
}

func TestStorePutGet(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, "service-secret", "service-salt")
	scope := UserScope(uuid.New())

	require.NoError(t, store.Put(context.Background(), scope, llm.ProviderOpenAI, "sk-proj-abcdefghijklmnop"))

	// the repository never sees plaintext
	rec := repo.recs[key(scope, llm.ProviderOpenAI)]
	assert.NotContains(t, string(rec.Ciphertext), "sk-proj")

	got, ok, err := store.Get(context.Background(), scope, llm.ProviderOpenAI)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-proj-abcdefghijklmnop", got)
}

func TestStorePutRejectsMalformedKey(t *testing.T) {
	store := NewStore(newMemRepo(), "s", "salt")
	err := store.Put(context.Background(), UserScope(uuid.New()), llm.ProviderOpenAI, "not-a-key")
	assert.ErrorIs(t, err, llm.ErrAuthInvalid)
}

func TestStoreGetMissingIsNotAnError(t *testing.T) {
	store := NewStore(newMemRepo(), "s", "salt")
	got, ok, err := store.Get(context.Background(), OrgScope(uuid.New()), llm.ProviderGemini)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}
