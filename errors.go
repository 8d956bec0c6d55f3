package gmpt

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidProof is returned by VerifyProof when the supplied proof
// nodes do not chain from the claimed root to the claimed key/value (or
// absence), per spec §4.5.
var ErrInvalidProof = errors.New("gmpt: invalid proof")

// ErrInvalidStateRoot is returned by FromRoot when root is non-zero but
// names no node present in the database.
var ErrInvalidStateRoot = errors.New("gmpt: invalid state root")

// MissingNodeError is returned when a HashRef cannot be resolved because
// its hash is absent from the database. Like DecodeError, it is returned
// as an error rather than a panic, since it reflects external database
// state rather than a programming bug.
type MissingNodeError struct {
	NodeHash common.Hash
	Path     []byte
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("gmpt: missing node %x (path %x)", e.NodeHash, e.Path)
}

// DecodeError wraps a failure to parse a node's wire encoding, recording
// the hash it was read from for diagnostics.
type DecodeError struct {
	NodeHash common.Hash
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gmpt: decoding node %x: %v", e.NodeHash, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
