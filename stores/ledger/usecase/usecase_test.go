package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/xerrors"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/ledger"
	activityRepository "github.com/deedchain/goapi/stores/activity/repository"
	activityUsecase "github.com/deedchain/goapi/stores/activity/usecase"
	"github.com/deedchain/goapi/stores/ledger/repository"
)

const (
	alice = domain.Address("0x000a")
	bob   = domain.Address("0x000b")

	eth = domain.Amount(1000000000000000000)
)

type stubPayout struct {
	released map[domain.Address]domain.Amount
	err      error
	// hook runs inside Release, before the result is decided
	hook func(c ctx.Ctx, to domain.Address)
}

func (p *stubPayout) Release(c ctx.Ctx, to domain.Address, amount domain.Amount) error {
	if p.hook != nil {
		p.hook(c, to)
	}
	if p.err != nil {
		return p.err
	}
	p.released[to] += amount
	return nil
}

type ledgerSuite struct {
	suite.Suite

	repo   ledger.Repo
	payout *stubPayout
	im     *impl
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(ledgerSuite))
}

func (s *ledgerSuite) SetupTest() {
	s.repo = repository.NewMemory()
	s.payout = &stubPayout{released: map[domain.Address]domain.Amount{}}
	s.im = New(&LedgerUseCaseCfg{
		Repo:     s.repo,
		Payout:   s.payout,
		Activity: activityUsecase.New(activityRepository.NewMemory()),
		Mu:       &sync.Mutex{},
	}).(*impl)
}

func (s *ledgerSuite) TestCreditAndBalanceOf() {
	c := ctx.Background()

	// unknown accounts read as zero, not as an error
	bal, err := s.im.BalanceOf(c, alice)
	s.NoError(err)
	s.Equal(domain.Amount(0), bal)

	s.NoError(s.im.Credit(c, alice, eth))
	s.NoError(s.im.Credit(c, alice, eth/2))
	s.NoError(s.im.Credit(c, bob, 0))

	bal, err = s.im.BalanceOf(c, alice)
	s.NoError(err)
	s.Equal(eth+eth/2, bal)

	// crediting zero leaves no entry behind
	bal, err = s.im.BalanceOf(c, bob)
	s.NoError(err)
	s.Equal(domain.Amount(0), bal)
}

func (s *ledgerSuite) TestWithdraw() {
	c := ctx.Background()
	s.NoError(s.im.Credit(c, alice, 2*eth))

	got, err := s.im.Withdraw(c, alice)
	s.NoError(err)
	s.Equal(2*eth, got)
	s.Equal(2*eth, s.payout.released[alice])

	// second withdrawal finds nothing, the first one spent the balance
	_, err = s.im.Withdraw(c, alice)
	s.Equal(domain.ErrNothingToWithdraw, err)
	s.Equal(2*eth, s.payout.released[alice])

	_, err = s.im.Withdraw(c, bob)
	s.Equal(domain.ErrNothingToWithdraw, err)
}

func (s *ledgerSuite) TestWithdrawReleaseFailureRefunds() {
	c := ctx.Background()
	s.NoError(s.im.Credit(c, alice, eth))

	s.payout.err = xerrors.New("rpc unreachable")
	_, err := s.im.Withdraw(c, alice)
	s.Error(err)

	// the failed release put the funds back
	bal, err := s.im.BalanceOf(c, alice)
	s.NoError(err)
	s.Equal(eth, bal)

	s.payout.err = nil
	got, err := s.im.Withdraw(c, alice)
	s.NoError(err)
	s.Equal(eth, got)
}

func (s *ledgerSuite) TestWithdrawReentrancy() {
	c := ctx.Background()
	s.NoError(s.im.Credit(c, alice, eth))

	// a payout that calls back into Withdraw sees an already zeroed balance
	var reentrantErr error
	s.payout.hook = func(c ctx.Ctx, to domain.Address) {
		_, reentrantErr = s.im.Withdraw(c, to)
	}

	got, err := s.im.Withdraw(c, alice)
	s.NoError(err)
	s.Equal(eth, got)
	s.Equal(domain.ErrNothingToWithdraw, reentrantErr)
	s.Equal(eth, s.payout.released[alice])
}
