package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const DigestLength = 32

var ErrInvalidLength = errors.New("invalid digest length")

// EmptyRoot is the commitment of a tree without any entries: keccak256(rlp("")).
var EmptyRoot = MustHexToDigest("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// Digest is a 32 byte Keccak-256 output. It is a value type, compare with ==.
type Digest [DigestLength]byte

func NewDigest(b []byte) (ret Digest, err error) {
	if len(b) != DigestLength {
		return ret, errors.Wrapf(ErrInvalidLength, "have %d bytes, want %d", len(b), DigestLength)
	}
	copy(ret[:], b)
	return
}

// BytesToDigest right-aligns b, cropping from the left when it is longer than a digest.
func BytesToDigest(b []byte) (ret Digest) {
	if len(b) > DigestLength {
		b = b[len(b)-DigestLength:]
	}
	copy(ret[DigestLength-len(b):], b)
	return
}

func HexToDigest(s string) (Digest, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return Digest{}, err
	}
	return NewDigest(b)
}

func MustHexToDigest(s string) Digest {
	ret, err := HexToDigest(s)
	if err != nil {
		panic(err)
	}
	return ret
}

func (self Digest) Bytes() []byte { return self[:] }

// Hex is the lowercase hex form without a prefix.
func (self Digest) Hex() string { return hex.EncodeToString(self[:]) }

func (self Digest) String() string { return self.Hex() }

func (self Digest) IsZero() bool { return self == Digest{} }

func (self Digest) Cmp(other Digest) int { return bytes.Compare(self[:], other[:]) }

// TerminalString shortens the digest for log output.
func (self Digest) TerminalString() string {
	return fmt.Sprintf("%x…%x", self[:3], self[29:])
}

func (self Digest) MarshalText() ([]byte, error) {
	return hexutil.Bytes(self[:]).MarshalText()
}

func (self *Digest) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Digest", input, self[:])
}

func CopyBytes(b []byte) (ret []byte) {
	if b == nil {
		return nil
	}
	ret = make([]byte, len(b))
	copy(ret, b)
	return
}
