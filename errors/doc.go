// Package errors provides standardized error handling for the ringbuffer packages.
//
// # Overview
//
// Errors fall into three classes: Transient (temporary, may be retried), Invalid
// (API misuse or bad input, do not retry), and Fatal (unrecoverable). The ring and
// buffer packages return classified errors so callers can tell a violated
// precondition from an allocation failure without matching error strings.
//
// # Container Sentinels
//
//   - ErrOverflow: a source sequence is longer than the capacity it is loaded into.
//     Only construction and Assign return it; pushes evict instead.
//   - ErrEmpty: Front, Back or a pop on an empty buffer.
//   - ErrOutOfRange: indexed access outside [0, Len()), or an iterator stepped outside
//     [0, Len()] (reported by panic).
//   - ErrForeignIterator: two iterators of different buffers were compared.
//   - ErrStaleIterator: an iterator was dereferenced after its buffer changed capacity.
//   - ErrClosed: the synchronized buffer was used after Close.
//
// Check for them with the standard library:
//
//	if errors.Is(err, errors.ErrEmpty) {
//	    // nothing to pop
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions set the classification:
//
//	errors.WrapTransient(err, "Dynamic", "Reserve", "allocate")
//	errors.WrapInvalid(err, "Fixed", "PopBack", "pop")
//	errors.WrapFatal(err, "MetricsRegistry", "RegisterGauge", "register")
//
// Wrap() adds context without changing the class of the wrapped error.
//
// # Thread Safety
//
// Classification and wrapping are safe for concurrent use. Sentinels are never
// mutated.
package errors
