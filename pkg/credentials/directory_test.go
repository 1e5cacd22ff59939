package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryUpsertAndFind(t *testing.T) {
	dir := NewDirectory()
	dir.Upsert(User{Name: "jane", Email: "jane@example.com", Groups: []string{"readers"}},
		Credential{Format: FormatSHA256, Digest: "abc"})

	user, cred, ok := dir.Find("jane")
	require.True(t, ok)
	assert.Equal(t, "jane", user.Name)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, []string{"readers"}, user.Groups)
	assert.Equal(t, FormatSHA256, cred.Format)
	assert.Equal(t, "abc", cred.Digest)

	_, _, ok = dir.Find("ghost")
	assert.False(t, ok)
}

func TestDirectoryUpsertReplacesWholeEntry(t *testing.T) {
	dir := NewDirectory()
	dir.Upsert(User{Name: "silvia", Email: "silvia@example.com", Groups: []string{"writers"}},
		Credential{Format: FormatPlain, Digest: "345"})
	dir.Upsert(User{Name: "silvia"}, Credential{Format: FormatPlain, Digest: "000"})

	user, cred, ok := dir.Find("silvia")
	require.True(t, ok)
	assert.Empty(t, user.Email, "replacement must not merge the old email")
	assert.Empty(t, user.Groups, "replacement must not merge the old groups")
	assert.Equal(t, "000", cred.Digest)
	assert.Equal(t, 1, dir.Len())
}

func TestDirectoryPreservesInsertionOrder(t *testing.T) {
	dir := NewDirectory()
	for _, name := range []string{"zoe", "mark", "ann"} {
		dir.Upsert(User{Name: name}, Credential{Format: FormatPlain, Digest: "123"})
	}

	names := make([]string, 0, dir.Len())
	for _, u := range dir.List() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"zoe", "mark", "ann"}, names)

	// Replacing an entry keeps its original position.
	dir.Upsert(User{Name: "mark"}, Credential{Format: FormatPlain, Digest: "456"})
	assert.Equal(t, "mark", dir.List()[1].Name)
}

func TestDirectoryRemove(t *testing.T) {
	dir := NewDirectory()
	for _, name := range []string{"mark", "ann", "jack"} {
		dir.Upsert(User{Name: name}, Credential{Format: FormatPlain, Digest: "123"})
	}

	assert.True(t, dir.Remove("ann"))
	assert.Equal(t, 2, dir.Len())

	// The index stays consistent after the shift.
	user, _, ok := dir.Find("jack")
	require.True(t, ok)
	assert.Equal(t, "jack", user.Name)
	assert.Equal(t, []string{"mark", "jack"}, []string{dir.List()[0].Name, dir.List()[1].Name})

	assert.False(t, dir.Remove("ann"), "second remove reports absence")
	assert.False(t, dir.Remove("ghost"))
	assert.Equal(t, 2, dir.Len())
}

func TestDirectoryListExcludesCallerAliasing(t *testing.T) {
	dir := NewDirectory()
	dir.Upsert(User{Name: "jane", Groups: []string{"readers"}},
		Credential{Format: FormatPlain, Digest: "123"})

	users := dir.List()
	users[0].Groups[0] = "mutated"

	user, _, ok := dir.Find("jane")
	require.True(t, ok)
	assert.Equal(t, []string{"readers"}, user.Groups)
}
