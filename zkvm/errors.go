package zkvm

import (
	"fmt"

	"github.com/pkg/errors"
)

type Stage string

const (
	StageExecute Stage = "execute"
	StageSetup   Stage = "setup"
	StageProve   Stage = "prove"
	StageVerify  Stage = "verify"
)

var (
	ErrExecutionTrap   = errors.New("execution trap")
	ErrStdinExhausted  = errors.New("stdin exhausted")
	ErrProgramMismatch = errors.New("program mismatch")
	ErrBadSignature    = errors.New("attestation signature does not verify")
	ErrInvalidKey      = errors.New("invalid key")
)

// StageError is every failure the client returns. It names the stage that
// failed; the cause is reachable through errors.Cause.
type StageError struct {
	Stage Stage
	Err   error
}

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*StageError); ok {
		return err
	}
	return &StageError{stage, err}
}

func (self *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", self.Stage, self.Err)
}

func (self *StageError) Cause() error  { return self.Err }
func (self *StageError) Unwrap() error { return self.Err }
