// Package zkvm runs deterministic programs over an RLP stdin and proves
// their executions.
package zkvm

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Config struct {
	// Logger defaults to the root logger.
	Logger log.Logger
}

// Client is one session with the execution and proving backend. Create one
// per run and pass it to whoever needs it. A Client holds no state besides
// its session id, so it is safe for concurrent use.
type Client struct {
	session uuid.UUID
	log     log.Logger
}

func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Root()
	}
	session := uuid.New()
	return &Client{
		session: session,
		log:     logger.New("module", "zkvm", "session", session.String()),
	}
}

func (self *Client) Session() uuid.UUID {
	return self.session
}

// Execute runs prog to completion. A panic inside prog is reported as
// ErrExecutionTrap.
func (self *Client) Execute(prog Program, stdin *Stdin) (*Output, *ExecutionReport, error) {
	out, report, err := self.run(prog, stdin)
	if err != nil {
		self.log.Error("Execution failed", "err", err)
		return nil, nil, stageError(StageExecute, err)
	}
	self.log.Info("Program executed", "program", prog.ID(), "elapsed", report.Elapsed)
	return out, report, nil
}

func (self *Client) Setup(prog Program) (*ProvingKey, *VerifyingKey, error) {
	if prog == nil {
		return nil, nil, stageError(StageSetup, errors.New("nil program"))
	}
	pk, err := newProvingKey(prog)
	if err != nil {
		return nil, nil, stageError(StageSetup, err)
	}
	self.log.Debug("Keys generated", "program", prog.ID())
	return pk, pk.vk, nil
}

// Prove executes the program behind pk and attests to its public output.
func (self *Client) Prove(pk *ProvingKey, stdin *Stdin) (*ProofArtifact, error) {
	if pk == nil {
		return nil, stageError(StageProve, ErrInvalidKey)
	}
	out, report, err := self.run(pk.program, stdin)
	if err != nil {
		return nil, stageError(StageProve, err)
	}
	sig, err := pk.sign(out.data)
	if err != nil {
		return nil, stageError(StageProve, err)
	}
	self.log.Info("Proof generated", "program", pk.vk.ProgramID, "elapsed", report.Elapsed)
	return &ProofArtifact{
		ProgramID:    pk.vk.ProgramID,
		PublicValues: out.data,
		Signature:    sig,
		Session:      self.session,
	}, nil
}

func (self *Client) Verify(proof *ProofArtifact, vk *VerifyingKey) error {
	if proof == nil || vk == nil {
		return stageError(StageVerify, errors.New("missing proof or key"))
	}
	if err := vk.check(proof); err != nil {
		return stageError(StageVerify, err)
	}
	self.log.Info("Proof verified", "program", vk.ProgramID)
	return nil
}

func (self *Client) run(prog Program, stdin *Stdin) (out *Output, report *ExecutionReport, err error) {
	if prog == nil {
		return nil, nil, errors.New("nil program")
	}
	env := newEnv(stdin)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, report = nil, nil
			err = errors.Wrap(ErrExecutionTrap, fmt.Sprint(r))
		}
	}()
	if err = prog.Run(env); err != nil {
		return nil, nil, err
	}
	report = &ExecutionReport{
		Session:     self.session,
		Program:     prog.ID(),
		OutputBytes: len(env.public),
		Elapsed:     time.Since(start),
		meters:      env.meters,
	}
	if stdin != nil {
		report.InputBytes = stdin.Size()
	}
	return &Output{env.public}, report, nil
}
