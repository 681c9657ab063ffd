package guid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const maxMintAttempts = 16

// Source produces candidate identifiers. The default source renders random
// (version 4) UUIDs as 32 lowercase hex characters.
type Source func() (string, error)

// RandomSource is the default Source.
func RandomSource() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(u.String(), "-", ""), nil
}

// Minter hands out fresh identifiers that never collide with identifiers it
// has already seen or minted.
type Minter struct {
	source Source
	taken  map[ID]struct{}
}

// NewMinter builds a minter. A nil source selects RandomSource.
func NewMinter(source Source) *Minter {
	if source == nil {
		source = RandomSource
	}
	return &Minter{source: source, taken: make(map[ID]struct{})}
}

// Reserve marks an existing identifier as unavailable for minting.
func (m *Minter) Reserve(id ID) {
	m.taken[id] = struct{}{}
}

// Mint returns a new identifier distinct from everything reserved or minted
// so far.
func (m *Minter) Mint() (ID, error) {
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		raw, err := m.source()
		if err != nil {
			return "", fmt.Errorf("mint identifier: %w", err)
		}
		if !Valid(raw) {
			return "", fmt.Errorf("mint identifier: source produced malformed token %q", raw)
		}
		id := ID(raw)
		if _, exists := m.taken[id]; exists {
			continue
		}
		m.taken[id] = struct{}{}
		return id, nil
	}
	return "", fmt.Errorf("mint identifier: no unique token after %d attempts", maxMintAttempts)
}
