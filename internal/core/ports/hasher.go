package ports

// Hasher computes content fingerprints.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Sum returns the fingerprint of content as a fixed-width hex string.
	Sum(content []byte) string
	// HashFile returns the fingerprint of the file at path.
	HashFile(path string) (string, error)
}
