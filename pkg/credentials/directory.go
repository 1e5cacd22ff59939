package credentials

// Directory is the decoded user section of one credential document: a
// mapping from user name to (User, Credential).
//
// Insertion order is not semantically significant for lookups but is
// preserved across encode/decode so that unrelated document diffs stay
// minimal. Names are unique; when a malformed document repeats a name the
// last occurrence wins.
//
// Directory is a pure in-memory value with no I/O and no locking; the
// owning CredentialStore never shares one across operations.
type Directory struct {
	entries []directoryEntry
	index   map[string]int
}

type directoryEntry struct {
	user User
	cred Credential
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		index: make(map[string]int),
	}
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	return len(d.entries)
}

// List returns all users in insertion order. Credential material is
// excluded from this projection; callers that need to authenticate use
// Find.
func (d *Directory) List() []User {
	users := make([]User, 0, len(d.entries))
	for _, e := range d.entries {
		users = append(users, e.user.clone())
	}
	return users
}

// Find returns the user and credential for a name, or ok=false when the
// name is absent.
func (d *Directory) Find(name string) (User, Credential, bool) {
	i, ok := d.index[name]
	if !ok {
		return User{}, Credential{}, false
	}
	e := d.entries[i]
	return e.user.clone(), e.cred, true
}

// Upsert inserts the entry if the name is absent, otherwise fully replaces
// the existing entry including groups, email and credential. There is no
// partial update: add and update are the same operation.
func (d *Directory) Upsert(user User, cred Credential) {
	entry := directoryEntry{user: user.clone(), cred: cred}

	if i, ok := d.index[user.Name]; ok {
		d.entries[i] = entry
		return
	}

	d.index[user.Name] = len(d.entries)
	d.entries = append(d.entries, entry)
}

// Remove deletes the entry for name, preserving the order of the remaining
// entries. Returns whether an entry existed; removing an absent name is a
// no-op, not an error.
func (d *Directory) Remove(name string) bool {
	i, ok := d.index[name]
	if !ok {
		return false
	}

	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, name)
	for j := i; j < len(d.entries); j++ {
		d.index[d.entries[j].user.Name] = j
	}
	return true
}
