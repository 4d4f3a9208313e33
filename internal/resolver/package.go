package resolver

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

const (
	// ContentType is the media type recorded for wheels in the manifest.
	ContentType = "application/octet-stream"

	// HashPrefix labels the digest algorithm in manifest entries.
	HashPrefix = "blake3:"

	// filenameHashLen is the number of hex digits of the hash kept in filenames.
	filenameHashLen = 16
)

// Package is a resolved, validated wheel.
type Package struct {
	Spec     Spec
	Name     string // as declared in METADATA
	Version  string
	Hash     string // hex BLAKE3 of Data
	Filename string
	Data     []byte
	Source   string // URL or path the bytes came from
}

// Key returns the PEP 503 normalized project name.
func (p *Package) Key() string {
	return NormalizeName(p.Name)
}

// Digest returns the labelled hash recorded in the manifest.
func (p *Package) Digest() string {
	return HashPrefix + p.Hash
}

// Hash returns the hex BLAKE3 digest of data.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Filename builds the stored artifact name. It depends only on the name,
// version and content, so it is stable across builds.
func Filename(name, version, hash string) string {
	short := hash
	if len(short) > filenameHashLen {
		short = short[:filenameHashLen]
	}
	return fmt.Sprintf("%s-%s-%s.whl", escapeName(name), version, short)
}

// newPackage validates data and builds a Package for spec.
func newPackage(spec Spec, data []byte, source string) (*Package, error) {
	info, err := InspectWheel(data)
	if err != nil {
		return nil, err
	}
	if spec.Name != "" && NormalizeName(spec.Name) != NormalizeName(info.Name) {
		return nil, fmt.Errorf("%w: requested %s, archive declares %s", ErrMismatch, spec.Name, info.Name)
	}
	if spec.Kind == KindPinned && spec.Version != info.Version {
		return nil, fmt.Errorf("%w: requested %s==%s, archive declares %s", ErrMismatch, spec.Name, spec.Version, info.Version)
	}

	hash := Hash(data)
	return &Package{
		Spec:     spec,
		Name:     info.Name,
		Version:  info.Version,
		Hash:     hash,
		Filename: Filename(info.Name, info.Version, hash),
		Data:     data,
		Source:   source,
	}, nil
}
