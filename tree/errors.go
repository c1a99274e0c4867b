package tree

import "github.com/pkg/errors"

var (
	ErrKeyAlreadyExists = errors.New("key already exists")
	ErrKeyNotFound      = errors.New("key not found")
	ErrEmptyTree        = errors.New("tree is empty")

	ErrInvalidProof       = errors.New("invalid proof")
	ErrProofKeyMismatch   = errors.New("proof key mismatch")
	ErrProofValueMismatch = errors.New("proof value mismatch")
	ErrRootMismatch       = errors.New("root mismatch")

	ErrUnknownProofKind = errors.New("unknown proof kind")
)
