package zkvm

import (
	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Stdin is the input handed to a program: a sequence of RLP blobs read back
// in the order they were written.
type Stdin struct {
	blobs [][]byte
}

func NewStdin() *Stdin {
	return new(Stdin)
}

// Write appends the RLP encoding of v.
func (self *Stdin) Write(v interface{}) error {
	enc, err := rlp.EncodeToBytes(v)
	if err != nil {
		return err
	}
	self.blobs = append(self.blobs, enc)
	return nil
}

// WriteRaw appends an already encoded blob.
func (self *Stdin) WriteRaw(enc []byte) {
	self.blobs = append(self.blobs, common.CopyBytes(enc))
}

func (self *Stdin) Size() (ret int) {
	for _, b := range self.blobs {
		ret += len(b)
	}
	return
}
