// main.go - Shielded pool demo daemon.
//
// Runs one full transfer through the pool core: derives two wallets,
// mints a note to the sender, builds and proves a shielded transfer to
// the recipient, applies it to the ledger and lets the recipient scan
// for the encrypted output. No network listeners; the ledger feed is
// in-process.
package main

import (
	"crypto/rand"
	"flag"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"shieldedpool/internal/keys"
	"shieldedpool/internal/note"
	"shieldedpool/internal/pool"
)

func main() {
	configPath := flag.String("config", "poold.json", "path to config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	metrics := NewMetricsCollector()

	if err := run(cfg, metrics); err != nil {
		log.Fatal().Err(err).Msg("scenario failed")
	}
	log.Info().Interface("metrics", metrics.Summary()).Msg("done")
}

// participant bundles one wallet with its published material.
type participant struct {
	wallet *pool.Wallet
	sk     *keys.SpendingKey
	addr   keys.Address
}

func newParticipant() (*participant, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	sk, err := keys.DeriveSpendingKey(seed)
	if err != nil {
		return nil, err
	}
	w := pool.NewWallet(sk)
	addr, err := w.ViewingKey().NewAddress()
	if err != nil {
		return nil, err
	}
	return &participant{wallet: w, sk: sk, addr: addr}, nil
}

func run(cfg *Config, metrics *MetricsCollector) error {
	asset := note.AssetID(cfg.AssetName)

	alice, err := newParticipant()
	if err != nil {
		return err
	}
	bob, err := newParticipant()
	if err != nil {
		return err
	}
	defer alice.sk.Wipe()
	defer bob.sk.Wipe()

	// Mint a note to the sender and sync it into the ledger, as the
	// external feed would.
	ledger := pool.NewLedger()
	minted, err := note.New(cfg.MintValue, asset, alice.addr, nil)
	if err != nil {
		return err
	}
	epoch, err := ledger.ApplyBlock([]fr.Element{minted.Commitment()}, nil)
	if err != nil {
		return err
	}
	alice.wallet.Track(minted, 0)
	root := ledger.Root()
	log.Info().Uint64("epoch", epoch).Str("root", root.String()).Msg("minted input note")

	// Build the transfer against a fresh snapshot.
	snap := ledger.Snapshot()
	builder := pool.NewBuilder(snap, alice.sk, alice.addr)
	builder.MaxRootAge = cfg.MaxRootAge

	var transfer *pool.Transfer
	err = metrics.Time(MetricBuildTime, func() error {
		var err error
		transfer, err = builder.Build(
			alice.wallet.Spendable(asset),
			[]pool.OutputRequest{{Value: cfg.SendValue, Asset: asset, To: bob.addr}},
			cfg.Fee,
			[]byte("poold demo transfer"),
		)
		return err
	})
	if err != nil {
		return err
	}
	defer transfer.Witness.Wipe()
	log.Info().
		Int("nullifiers", len(transfer.Public.Nullifiers)).
		Int("outputs", len(transfer.Public.OutputCommitments)).
		Uint64("fee", transfer.Public.Fee).
		Msg("transfer assembled")

	if !cfg.SkipProving {
		if err := proveAndVerify(cfg, metrics, transfer); err != nil {
			return err
		}
	}

	// Finalize against the live ledger.
	epoch, err = ledger.Apply(transfer, cfg.MaxRootAge)
	if err != nil {
		return err
	}
	metrics.SetGauge(MetricLedgerEpoch, float64(epoch))

	// Encrypt the outputs to their owners and let each wallet scan.
	owners := []*participant{bob, alice} // payment slot, change slot
	outNotes, err := transfer.OutputNotes([]keys.Address{bob.addr, alice.addr})
	if err != nil {
		return err
	}
	basePos := epoch - uint64(len(outNotes))
	for j, n := range outNotes {
		payload, err := n.Encrypt(owners[j].wallet.ViewingKey().IncomingKey)
		if err != nil {
			return err
		}
		for _, p := range []*participant{bob, alice} {
			if got, ok := p.wallet.Scan(payload, basePos+uint64(j)); ok {
				log.Info().Uint64("value", got.Value).Msg("wallet recognized note")
				break
			}
		}
	}
	alice.wallet.MarkSpent(transfer.Public.Nullifiers)

	log.Info().
		Uint64("sender_balance", alice.wallet.Balance(asset)).
		Uint64("recipient_balance", bob.wallet.Balance(asset)).
		Msg("balances after transfer")
	return nil
}

func proveAndVerify(cfg *Config, metrics *MetricsCollector, transfer *pool.Transfer) error {
	var compiled constraint.ConstraintSystem
	err := metrics.Time(MetricCircuitCompileTime, func() error {
		var err error
		compiled, err = pool.CompileTransferCircuit()
		return err
	})
	if err != nil {
		return err
	}
	log.Info().Int("constraints", compiled.GetNbConstraints()).Msg("transfer circuit compiled")

	if err := os.MkdirAll(cfg.KeyDir, 0755); err != nil {
		return err
	}
	pkPath := filepath.Join(cfg.KeyDir, "transfer_proving.key")
	vkPath := filepath.Join(cfg.KeyDir, "transfer_verifying.key")

	var provingKey groth16.ProvingKey
	var verifyingKey groth16.VerifyingKey
	err = metrics.Time(MetricKeySetupTime, func() error {
		var err error
		provingKey, verifyingKey, err = pool.SetupOrLoadKeys(compiled, pkPath, vkPath)
		return err
	})
	if err != nil {
		return err
	}

	var proof []byte
	err = metrics.Time(MetricProofGenerationTime, func() error {
		var err error
		proof, err = pool.Prove(compiled, provingKey, transfer)
		return err
	})
	if err != nil {
		return err
	}
	return metrics.Time(MetricProofVerifyTime, func() error {
		return pool.Verify(proof, verifyingKey, transfer.Public)
	})
}
