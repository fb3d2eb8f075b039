// errors.go - Error values for transfer building and ledger state.
//
// Input errors (malformed caller data) and resource errors
// (InsufficientFunds) are never retried automatically. State errors
// (StaleTree, DuplicateNullifier, CapacityExceeded) resolve by
// refetching ledger state and reselecting. Prover failures are wrapped
// once and surfaced verbatim, never swallowed.

package pool

import "errors"

var (
	// ErrStaleTree is returned when the referenced root has aged beyond
	// the allowed staleness window.
	ErrStaleTree = errors.New("stale tree: snapshot root aged beyond allowed window")

	// ErrInsufficientFunds is returned when no input subset within the
	// proof arity covers the requested outputs plus fee.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNegativeChange guards witness assembly against a selection
	// that does not cover outputs plus fee. Unreachable after a correct
	// selection.
	ErrNegativeChange = errors.New("negative change")

	// ErrNoOutputs is returned for an empty output request list.
	ErrNoOutputs = errors.New("transfer needs at least one output")

	// ErrTooManyOutputs is returned when the request exceeds the proof
	// output arity (one payment slot is reserved for change when the
	// request fills all slots and change is nonzero).
	ErrTooManyOutputs = errors.New("too many outputs for one transfer")

	// ErrAssetMismatch is returned when inputs and outputs do not share
	// a single asset identifier.
	ErrAssetMismatch = errors.New("transfer mixes asset identifiers")

	// ErrRootMismatch signals an internal invariant violation: a
	// recomputed Merkle path disagrees with the snapshot root. The
	// assembly attempt is aborted rather than emitting an unverifiable
	// transfer.
	ErrRootMismatch = errors.New("internal: recomputed merkle path does not match root")

	// ErrUnknownRoot is returned when a transfer references a root the
	// ledger never produced.
	ErrUnknownRoot = errors.New("transfer references unknown root")

	// ErrSchemaVersion is returned for a witness or public-input
	// structure with an unsupported version.
	ErrSchemaVersion = errors.New("unsupported transfer schema version")
)
