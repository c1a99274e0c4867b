package zkvm

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/google/uuid"
)

// Output is the public output of an execution.
type Output struct {
	data []byte
}

func (self *Output) Bytes() []byte {
	return common.CopyBytes(self.data)
}

func (self *Output) Hex() string {
	return hex.EncodeToString(self.data)
}

type ExecutionReport struct {
	Session     uuid.UUID
	Program     common.Digest
	InputBytes  int
	OutputBytes int
	Elapsed     time.Duration
	meters      *treemap.Map
}

// Meter returns the named counter, zero when the program never touched it.
func (self *ExecutionReport) Meter(name string) uint64 {
	if v, ok := self.meters.Get(name); ok {
		return v.(uint64)
	}
	return 0
}

// MeterNames lists the counters in lexical order.
func (self *ExecutionReport) MeterNames() (ret []string) {
	for _, k := range self.meters.Keys() {
		ret = append(ret, k.(string))
	}
	return
}

func (self *ExecutionReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "session: %s\n", self.Session)
	fmt.Fprintf(&b, "program: %s\n", self.Program.Hex())
	fmt.Fprintf(&b, "input bytes: %d\n", self.InputBytes)
	fmt.Fprintf(&b, "output bytes: %d\n", self.OutputBytes)
	it := self.meters.Iterator()
	for it.Next() {
		fmt.Fprintf(&b, "%s: %d\n", it.Key(), it.Value())
	}
	fmt.Fprintf(&b, "elapsed: %s", self.Elapsed)
	return b.String()
}
