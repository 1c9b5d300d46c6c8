package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/logging"
	"github.com/layer-3/walletauth/ports"
)

const tracerName = "github.com/layer-3/walletauth/service"

// Recorder receives handshake measurements. Empty codes mean success.
type Recorder interface {
	ObserveStage(stage core.Stage, d time.Duration, code string)
	ObserveRun(code string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStage(core.Stage, time.Duration, string) {}
func (nopRecorder) ObserveRun(string)                              {}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithStatement sets the statement shown in sign-in messages
func WithStatement(statement string) Option {
	return func(o *Orchestrator) { o.statement = statement }
}

// WithChainID pins sign-in messages to chainID
func WithChainID(chainID int64) Option {
	return func(o *Orchestrator) { o.chainID = chainID }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithTracer sets the tracer used for handshake spans
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// Orchestrator runs the sign-in handshake: address, message, signature, session.
type Orchestrator struct {
	addresses   *AddressProvider
	messages    *MessageFactory
	signer      *MessageSigner
	initializer *SessionInitializer

	statement string
	chainID   int64
	logger    *slog.Logger
	recorder  Recorder
	tracer    trace.Tracer
}

// NewOrchestrator creates an orchestrator for wallet
func NewOrchestrator(wallet ports.HostWallet, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.Discard()
	}

	o := &Orchestrator{
		logger:   logger,
		recorder: nopRecorder{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}

	nonces := NewNonceSource()
	o.addresses = NewAddressProvider(wallet)
	o.messages = NewMessageFactory(o.statement, o.chainID, nonces)
	o.signer = NewMessageSigner(wallet, nonces)
	o.initializer = NewSessionInitializer()

	return o
}

// PerformAuth runs the handshake once against sessions. The first failing stage
// ends the run; its classified error is returned as is, and unclassified errors
// are wrapped as PIPELINE_FAILURE tagged with the stage.
func (o *Orchestrator) PerformAuth(ctx context.Context, sessions ports.SessionLayer) (*AuthSession, error) {
	id := uuid.New().String()
	r := &run{
		id:     id,
		state:  StateNotStarted,
		logger: o.logger.With("correlation_id", id),
	}

	ctx, span := o.tracer.Start(ctx, "walletauth.PerformAuth",
		trace.WithAttributes(attribute.String("walletauth.correlation_id", r.id)))
	defer span.End()

	session, err := o.perform(ctx, r, sessions)
	o.recorder.ObserveRun(core.CodeOf(err))
	if err != nil {
		span.SetAttributes(attribute.String("walletauth.failed_stage", string(r.failedStage)))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, core.CodeOf(err))
		return nil, err
	}

	r.logger.InfoContext(ctx, "authentication completed",
		"address", session.Address().String(),
		"session_id", session.Handle().ID,
	)
	return session, nil
}

func (o *Orchestrator) perform(ctx context.Context, r *run, sessions ports.SessionLayer) (*AuthSession, error) {
	if _, ok := core.EnvironmentFrom(ctx); !ok {
		err := core.Fail(core.CodeWrongContext, core.StagePipeline, "authentication requires an origin")
		return nil, r.fail(ctx, core.StagePipeline, err)
	}

	r.logger.DebugContext(ctx, "authentication started")

	address, err := runStage(ctx, o, r, core.StageAddress, StateAddressObtained,
		o.addresses.WalletAddress)
	if err != nil {
		return nil, err
	}

	msg, err := runStage(ctx, o, r, core.StageMessage, StateMessageGenerated,
		func(ctx context.Context) (*core.SignInMessage, error) {
			return o.messages.Generate(ctx, sessions, address)
		})
	if err != nil {
		return nil, err
	}

	sig, err := runStage(ctx, o, r, core.StageSigning, StateMessageSigned,
		func(ctx context.Context) (core.Signature, error) {
			return o.signer.Sign(ctx, msg.Render())
		})
	if err != nil {
		return nil, err
	}

	return runStage(ctx, o, r, core.StageSession, StateSessionInitialized,
		func(ctx context.Context) (*AuthSession, error) {
			return o.initializer.Initialize(ctx, sessions, msg, sig)
		})
}

func runStage[T any](
	ctx context.Context,
	o *Orchestrator,
	r *run,
	stage core.Stage,
	next State,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T

	if err := r.check(next); err != nil {
		return zero, r.fail(ctx, stage, core.Classify(core.CodePipelineFailure, stage, err, "handshake out of order"))
	}
	if err := ctx.Err(); err != nil {
		return zero, r.fail(ctx, stage, core.Classify(core.CodePipelineFailure, stage, err, "handshake cancelled"))
	}

	ctx, span := o.tracer.Start(ctx, "walletauth."+string(stage))
	defer span.End()

	logger := r.logger.With("stage", string(stage))
	logger.DebugContext(ctx, "stage started")

	start := time.Now()
	out, err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		err = core.Classify(core.CodePipelineFailure, stage, err, fmt.Sprintf("%s stage failed", stage))
		o.recorder.ObserveStage(stage, elapsed, core.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, core.CodeOf(err))
		return zero, r.fail(ctx, stage, err)
	}

	o.recorder.ObserveStage(stage, elapsed, "")
	r.state = next
	logger.InfoContext(ctx, "stage completed", "state", next.String(), "duration", elapsed)

	return out, nil
}

// State is the position of a handshake run in the pipeline
type State int

const (
	StateNotStarted State = iota
	StateAddressObtained
	StateMessageGenerated
	StateMessageSigned
	StateSessionInitialized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateAddressObtained:
		return "address_obtained"
	case StateMessageGenerated:
		return "message_generated"
	case StateMessageSigned:
		return "message_signed"
	case StateSessionInitialized:
		return "session_initialized"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// run is the state of a single PerformAuth call
type run struct {
	id          string
	state       State
	failedStage core.Stage
	logger      *slog.Logger
}

// check rejects any transition other than the next step of the pipeline
func (r *run) check(next State) error {
	if r.state == StateFailed || r.state == StateSessionInitialized || next != r.state+1 {
		return fmt.Errorf("cannot move from %s to %s", r.state, next)
	}
	return nil
}

func (r *run) fail(ctx context.Context, stage core.Stage, err error) error {
	r.state = StateFailed
	r.failedStage = stage
	logging.LogError(ctx, r.logger.With("stage", string(stage)), "authentication failed", err)
	return err
}
