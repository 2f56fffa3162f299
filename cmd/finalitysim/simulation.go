package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality"
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/finalitytest"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
	"github.com/dynastynet/finalityd/domain/finality/utils/consensushashing"
	"github.com/dynastynet/finalityd/domain/finality/utils/ufp64"
	"github.com/dynastynet/finalityd/domain/finality/utils/validatoraddress"
)

// tipTracker holds the tip of the simulated chain.
type tipTracker struct {
	sync.RWMutex
	tip *externalapi.DomainHash
}

func (t *tipTracker) Tip() (*externalapi.DomainHash, error) {
	t.RLock()
	defer t.RUnlock()
	return t.tip, nil
}

func (t *tipTracker) set(tip *externalapi.DomainHash) {
	t.Lock()
	defer t.Unlock()
	t.tip = tip
}

type epochReport struct {
	epoch         externalapi.Epoch
	info          *finalitystate.StateInfo
	participation ufp64.UFP64
	rewards       uint64
	commitment    *finality.StateCommitment
}

// simulation grows a chain in which a fixed share of the validators casts
// the recommended vote in the second block of every epoch.
type simulation struct {
	params     *dagconfig.Params
	finality   finality.Finality
	chain      *finalitytest.Chain
	tips       *tipTracker
	validators []externalapi.ValidatorAddress
	voters     int
}

func newSimulation(params *dagconfig.Params, finality finality.Finality, chain *finalitytest.Chain,
	validatorCount int, participation ufp64.UFP64) (*simulation, error) {

	validators := make([]externalapi.ValidatorAddress, validatorCount)
	for i := range validators {
		var err error
		validators[i], err = validatoraddress.FromPrivateKey(validatorPrivateKey(i))
		if err != nil {
			return nil, err
		}
	}
	voters, err := ufp64.MulByUint(participation, uint64(validatorCount))
	if err != nil {
		return nil, err
	}
	return &simulation{
		params:     params,
		finality:   finality,
		chain:      chain,
		tips:       &tipTracker{tip: chain.GenesisHash()},
		validators: validators,
		voters:     int(voters.ToUint()),
	}, nil
}

// validatorPrivateKey returns the Schnorr private key of the i-th simulated
// validator. Keys are fixed so that runs are reproducible.
func validatorPrivateKey(i int) []byte {
	privateKey := make([]byte, 32)
	binary.BigEndian.PutUint32(privateKey[28:], uint32(i+1))
	return privateKey
}

// run simulates the given number of epochs and reports the state at the
// checkpoint of each of them.
func (s *simulation) run(ctx context.Context, epochs externalapi.Epoch) ([]*epochReport, error) {
	deposits := make([]*externalapi.DomainTransaction, len(s.validators))
	for i, validator := range s.validators {
		deposits[i] = finalitytest.DepositTransaction(validator, s.params.Finalization.MinDepositSize)
	}
	tipHash, err := s.addBlock(s.chain.GenesisHash(), deposits...)
	if err != nil {
		return nil, err
	}
	log.Infof("%d validators deposited, %d of them vote", len(s.validators), s.voters)

	var reports []*epochReport
	lastHeight := s.params.Finalization.CheckpointHeight(epochs)
	for height := externalapi.BlockHeight(2); height <= lastHeight; height++ {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		var votes []*externalapi.DomainTransaction
		if s.params.Finalization.IsEpochStart(height - 1) {
			votes, err = s.votes(tipHash)
			if err != nil {
				return reports, err
			}
		}
		tipHash, err = s.addBlock(tipHash, votes...)
		if err != nil {
			return reports, err
		}

		if height >= s.params.Finalization.CheckpointHeight(1) && s.params.Finalization.IsCheckpoint(height) {
			report, err := s.report(tipHash)
			if err != nil {
				return reports, err
			}
			log.Infof("Epoch %d: dynasty %d, last justified %d, last finalized %d, participation %s, state %s",
				report.epoch, report.info.CurrentDynasty, report.info.LastJustifiedEpoch,
				report.info.LastFinalizedEpoch, report.participation, report.commitment.StateHash)
			reports = append(reports, report)
		}
	}
	return reports, nil
}

// votes returns the recommended votes of the voting validators that the
// state after tipHash accepts.
func (s *simulation) votes(tipHash *externalapi.DomainHash) ([]*externalapi.DomainTransaction, error) {
	state, err := s.finality.FinalizationState(tipHash)
	if err != nil {
		return nil, err
	}
	if state.CurrentEpoch() == 0 {
		return nil, nil
	}

	var votes []*externalapi.DomainTransaction
	for _, validator := range s.validators[:s.voters] {
		vote, err := s.finality.RecommendedVote(tipHash, validator)
		if err != nil {
			return nil, err
		}
		err = state.ValidateVote(vote)
		if ruleerrors.IsRuleError(err) {
			log.Debugf("Validator %s doesn't vote in epoch %d: %s", validator, state.CurrentEpoch(), err)
			continue
		}
		if err != nil {
			return nil, err
		}
		votes = append(votes, &externalapi.DomainTransaction{Type: externalapi.TxTypeVote, Vote: vote})
	}
	return votes, nil
}

func (s *simulation) addBlock(parentHash *externalapi.DomainHash,
	transactions ...*externalapi.DomainTransaction) (*externalapi.DomainHash, error) {

	rewards, err := s.finality.FinalizationRewards(parentHash)
	if err != nil {
		return nil, err
	}
	block, err := s.chain.BuildBlock(parentHash, rewards, transactions...)
	if err != nil {
		return nil, err
	}
	err = s.finality.ValidateAndInsertBlock(block)
	if err != nil {
		return nil, err
	}
	blockHash := consensushashing.BlockHash(block)
	s.tips.set(blockHash)
	return blockHash, nil
}

func (s *simulation) report(tipHash *externalapi.DomainHash) (*epochReport, error) {
	state, err := s.finality.FinalizationState(tipHash)
	if err != nil {
		return nil, err
	}
	participation, err := state.ParticipationFraction()
	if err != nil {
		return nil, err
	}
	rewards, err := s.finality.FinalizationRewards(tipHash)
	if err != nil {
		return nil, err
	}
	commitment, err := s.finality.StateCommitment(tipHash)
	if err != nil {
		return nil, err
	}
	report := &epochReport{
		epoch:         state.CurrentEpoch(),
		info:          state.Info(),
		participation: participation,
		commitment:    commitment,
	}
	for _, reward := range rewards {
		report.rewards += reward.Value
	}
	return report, nil
}

func printReports(w io.Writer, reports []*epochReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	_, err := fmt.Fprintln(tw, "epoch\tdynasty\tjustified\tfinalized\tdeposits\tparticipation\trewards\tstate\tvalidators\t")
	if err != nil {
		return err
	}
	for _, report := range reports {
		_, err = fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%s\t%d\t%s\t%s\t\n", report.epoch, report.info.CurrentDynasty,
			report.info.LastJustifiedEpoch, report.info.LastFinalizedEpoch, report.info.CurDynastyDeposits,
			report.participation, report.rewards, shortHash(report.commitment.StateHash),
			shortHash(report.commitment.ValidatorSetCommitment))
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

func shortHash(hash *externalapi.DomainHash) string {
	return hash.String()[:16]
}
