// Package snapshot implements the atomic persist/load protocol for the
// on-disk registry snapshot, its stable checksum serialization, and an
// optional external cache mirror.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/kb-labs/registry-host/domain/entities"
)

// integrityFields are elided before computing the checksum.
var integrityFields = []string{"checksum", "checksumAlgorithm", "previousChecksum"}

// stableSerialize produces the canonical form used for checksums: JSON with
// recursively sorted object keys (Go's encoding/json sorts map[string]any
// keys lexicographically) and the integrity fields removed.
func stableSerialize(s *entities.RegistrySnapshot) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	for _, f := range integrityFields {
		delete(generic, f)
	}
	return json.Marshal(generic)
}

// computeChecksum returns the lowercase hex SHA-256 of s's stable serialization.
func computeChecksum(s *entities.RegistrySnapshot) (string, error) {
	data, err := stableSerialize(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
