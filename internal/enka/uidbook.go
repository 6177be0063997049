package enka

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elisartix/herder/internal/consts"
	"github.com/elisartix/herder/internal/database"
)

// UIDBook keeps the owner's default uid and a named alias map in the KV
// store. Aliases are stored lowercased.
type UIDBook struct {
	store database.Store
}

func NewUIDBook(store database.Store) *UIDBook {
	return &UIDBook{store: store}
}

// SetDefault stores uid as the fallback for commands called without one.
func (b *UIDBook) SetDefault(uid string) error {
	if !ValidUID(uid) {
		return ErrBadUID
	}
	return b.store.Set(consts.NSGenshin, consts.KeyDefaultUID, uid)
}

// SaveAlias binds name to uid. The name is lowercased and must not itself
// look like a uid.
func (b *UIDBook) SaveAlias(name, uid string) error {
	if !ValidUID(uid) {
		return ErrBadUID
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("alias name is empty")
	}
	if ValidUID(name) {
		return fmt.Errorf("alias %q looks like a uid", name)
	}

	aliases, err := b.aliases()
	if err != nil {
		return err
	}
	aliases[name] = uid
	return database.SetJSON(b.store, consts.NSGenshin, consts.KeyUIDAliases, aliases)
}

// DeleteAlias removes name from the book. Returns false if it was absent.
func (b *UIDBook) DeleteAlias(name string) (bool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	aliases, err := b.aliases()
	if err != nil {
		return false, err
	}
	if _, ok := aliases[name]; !ok {
		return false, nil
	}
	delete(aliases, name)
	return true, database.SetJSON(b.store, consts.NSGenshin, consts.KeyUIDAliases, aliases)
}

// Resolve maps a command argument to a uid. A literal uid passes through,
// a known alias is looked up, and an empty argument falls back to the
// stored default.
func (b *UIDBook) Resolve(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if ValidUID(arg) {
		return arg, nil
	}
	if arg == "" {
		uid, err := b.store.Get(consts.NSGenshin, consts.KeyDefaultUID, "")
		if err != nil {
			return "", err
		}
		if uid == "" {
			return "", fmt.Errorf("no default uid saved, use /enuid first")
		}
		return uid, nil
	}

	aliases, err := b.aliases()
	if err != nil {
		return "", err
	}
	if uid, ok := aliases[strings.ToLower(arg)]; ok {
		return uid, nil
	}
	return "", fmt.Errorf("unknown uid or alias %q", arg)
}

// List returns the alias map sorted by name for display.
func (b *UIDBook) List() ([]string, error) {
	aliases, err := b.aliases()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, fmt.Sprintf("%s: %s", name, aliases[name]))
	}
	return out, nil
}

func (b *UIDBook) aliases() (map[string]string, error) {
	aliases := make(map[string]string)
	if _, err := database.GetJSON(b.store, consts.NSGenshin, consts.KeyUIDAliases, &aliases); err != nil {
		return nil, err
	}
	return aliases, nil
}
