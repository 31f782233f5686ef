package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidStep indicates a time step that is negative, NaN or Inf.
	ErrInvalidStep = errors.New("dynamo: invalid time step (negative, NaN or Inf)")

	// ErrInvalidState indicates a particle with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates run settings that cannot drive a simulation.
	ErrInvalidConfig = errors.New("dynamo: invalid run configuration")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
