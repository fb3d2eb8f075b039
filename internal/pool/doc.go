// Package pool implements the client-side core of a shielded
// transaction pool: a UTXO-style note ledger whose balances and
// transfer graph are hidden behind commitments, nullifiers and
// zero-knowledge proofs.
//
// Overview:
//   - Ledger mirrors the authoritative append-only ledger state (the
//     commitment tree and nullifier set) from a synchronization feed
//   - Builder selects spendable notes and assembles the private
//     transfer witness plus public inputs for the proving backend
//   - CircuitTransfer is the reference Groth16 circuit (BW6-761) the
//     witness schema is pinned to
//   - Wallet scans encrypted payloads and tracks per-key balances
//
// Security model:
//   - MiMC (BW6-761) for commitments, nullifiers and all PRFs
//   - BLS12-377 Diffie-Hellman for note payload encryption
//   - Groth16 proofs generated and verified through gnark
//   - All randomness from crypto/rand; secret witness material is
//     wiped after proof generation, including on error paths
//
// The pool performs no network or disk I/O of its own: callers
// synchronize ledger state in, build transfers against a snapshot, and
// apply accepted transfers back atomically.
package pool
