package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/auction"
	"github.com/deedchain/goapi/domain/escrow"
	"github.com/deedchain/goapi/domain/ledger"
	"github.com/deedchain/goapi/domain/property"
	activityRepository "github.com/deedchain/goapi/stores/activity/repository"
	activityUsecase "github.com/deedchain/goapi/stores/activity/usecase"
	auctionRepository "github.com/deedchain/goapi/stores/auction/repository"
	auctionUsecase "github.com/deedchain/goapi/stores/auction/usecase"
	ledgerRepository "github.com/deedchain/goapi/stores/ledger/repository"
	ledgerUsecase "github.com/deedchain/goapi/stores/ledger/usecase"
	propertyRepository "github.com/deedchain/goapi/stores/property/repository"
	propertyUsecase "github.com/deedchain/goapi/stores/property/usecase"
	"github.com/deedchain/goapi/stores/escrow/repository"
)

const (
	arbiter = domain.Address("0xa12b")
	seller  = domain.Address("0x0001")
	bidderA = domain.Address("0x000a")
	bidderB = domain.Address("0x000b")
	gps     = domain.Location("GPS1234")

	eth = domain.Amount(1000000000000000000)
)

// faultyEscrowRepo fails Update on demand to exercise partial-write paths
type faultyEscrowRepo struct {
	escrow.Repo
	failUpdate bool
}

func (r *faultyEscrowRepo) Update(c ctx.Ctx, gps domain.Location, updater *escrow.Updater) error {
	if r.failUpdate {
		return domain.ErrInternalServerError
	}
	return r.Repo.Update(c, gps, updater)
}

type escrowSuite struct {
	suite.Suite

	propertyRepo property.Repo
	repo         *faultyEscrowRepo
	ledger       ledger.Usecase
	propertyUC   property.Usecase
	auctionUC    auction.Usecase
	im           *impl
}

func TestEscrowSuite(t *testing.T) {
	suite.Run(t, new(escrowSuite))
}

func (s *escrowSuite) SetupTest() {
	mu := &sync.Mutex{}
	activityUC := activityUsecase.New(activityRepository.NewMemory())

	s.propertyRepo = propertyRepository.NewMemory()
	s.repo = &faultyEscrowRepo{Repo: repository.NewMemory()}
	auctionRepo := auctionRepository.NewMemory()
	s.ledger = ledgerUsecase.New(&ledgerUsecase.LedgerUseCaseCfg{
		Repo:     ledgerRepository.NewMemory(),
		Activity: activityUC,
		Mu:       mu,
	})
	s.propertyUC = propertyUsecase.New(&propertyUsecase.PropertyUseCaseCfg{
		Repo:        s.propertyRepo,
		AuctionRepo: auctionRepo,
		Activity:    activityUC,
		Arbiter:     arbiter,
		Mu:          mu,
	})
	s.auctionUC = auctionUsecase.New(&auctionUsecase.AuctionUseCaseCfg{
		Repo:         auctionRepo,
		PropertyRepo: s.propertyRepo,
		EscrowRepo:   s.repo,
		Ledger:       s.ledger,
		Activity:     activityUC,
		Arbiter:      arbiter,
		Mu:           mu,
	})
	s.im = New(&EscrowUseCaseCfg{
		Repo:         s.repo,
		PropertyRepo: s.propertyRepo,
		Ledger:       s.ledger,
		Activity:     activityUC,
		Arbiter:      arbiter,
		Mu:           mu,
	}).(*impl)
}

// runAuction walks one property from registration to a closed auction with
// bidderB holding the winning bid of 2 eth and bidderA outbid at 1.5 eth
func (s *escrowSuite) runAuction() {
	c := ctx.Background()

	_, err := s.propertyUC.Register(c, seller, "12 Harbor Street", gps, "QmDoc1")
	s.Require().NoError(err)
	s.Require().NoError(s.propertyUC.Verify(c, arbiter, gps))

	_, err = s.auctionUC.Open(c, seller, gps, eth, time.Millisecond, auction.ListingFee(eth))
	s.Require().NoError(err)

	s.Require().NoError(s.auctionUC.Bid(c, bidderA, gps, eth+eth/2))
	s.Require().NoError(s.auctionUC.Bid(c, bidderB, gps, 2*eth))

	time.Sleep(5 * time.Millisecond)
	due, data, err := s.auctionUC.CheckTrigger(c)
	s.Require().NoError(err)
	s.Require().True(due)
	s.Require().NoError(s.auctionUC.CloseTriggered(c, data))
}

func (s *escrowSuite) TestSettlementScenario() {
	c := ctx.Background()
	s.runAuction()

	// the outbid stake is the only pending balance so far
	bal, err := s.ledger.BalanceOf(c, bidderA)
	s.NoError(err)
	s.Equal(eth+eth/2, bal)

	t, err := s.im.Get(c, gps)
	s.NoError(err)
	s.Equal(bidderB, t.Buyer)
	s.Equal(seller, t.Seller)
	s.Equal(2*eth, t.Amount)

	// one side confirming is not enough
	s.NoError(s.im.Confirm(c, bidderB, gps))
	s.Equal(domain.ErrNotBothConfirmed, s.im.AdminFinalize(c, arbiter, gps, "QmDoc2"))

	// confirming twice never double-counts
	s.NoError(s.im.Confirm(c, bidderB, gps))
	t, err = s.im.Get(c, gps)
	s.NoError(err)
	s.False(t.SellerConfirmed)

	s.NoError(s.im.Confirm(c, seller, gps))
	s.NoError(s.im.AdminFinalize(c, arbiter, gps, "QmDoc2"))

	// title moved and the document hash was rewritten together
	p, err := s.propertyRepo.Get(c, gps)
	s.NoError(err)
	s.Equal(bidderB, p.Owner)
	s.Equal(domain.DocumentHash("QmDoc2"), p.DocHash)

	// seller got the winning bid, on top of nothing else
	bal, err = s.ledger.BalanceOf(c, seller)
	s.NoError(err)
	s.Equal(2*eth, bal)

	// the settlement is spent
	s.Equal(domain.ErrNoActiveTransaction, s.im.Confirm(c, seller, gps))
	s.Equal(domain.ErrNoActiveTransaction, s.im.AdminFinalize(c, arbiter, gps, "QmDoc3"))
}

func (s *escrowSuite) TestConfirmChecks() {
	c := ctx.Background()

	s.Equal(domain.ErrNoActiveTransaction, s.im.Confirm(c, seller, gps))

	s.runAuction()
	s.Equal(domain.ErrUnauthorized, s.im.Confirm(c, domain.Address("0x0bad"), gps))
}

func (s *escrowSuite) TestAdminFinalizeRetryPaysSellerOnce() {
	c := ctx.Background()
	s.runAuction()

	s.NoError(s.im.Confirm(c, bidderB, gps))
	s.NoError(s.im.Confirm(c, seller, gps))

	// a partial failure leaves the transaction active and the seller unpaid
	s.repo.failUpdate = true
	s.Error(s.im.AdminFinalize(c, arbiter, gps, "QmDoc2"))

	bal, err := s.ledger.BalanceOf(c, seller)
	s.NoError(err)
	s.Equal(domain.Amount(0), bal)

	t, err := s.repo.Get(c, gps)
	s.NoError(err)
	s.True(t.Active)

	// the retry settles and credits the winning bid exactly once
	s.repo.failUpdate = false
	s.NoError(s.im.AdminFinalize(c, arbiter, gps, "QmDoc2"))

	bal, err = s.ledger.BalanceOf(c, seller)
	s.NoError(err)
	s.Equal(2*eth, bal)

	t, err = s.repo.Get(c, gps)
	s.NoError(err)
	s.False(t.Active)
}

func (s *escrowSuite) TestAdminFinalizeChecks() {
	c := ctx.Background()
	s.runAuction()

	s.NoError(s.im.Confirm(c, bidderB, gps))
	s.NoError(s.im.Confirm(c, seller, gps))

	// only the arbiter finalizes, the parties themselves cannot
	s.Equal(domain.ErrUnauthorized, s.im.AdminFinalize(c, seller, gps, "QmDoc2"))
	s.Equal(domain.ErrUnauthorized, s.im.AdminFinalize(c, bidderB, gps, "QmDoc2"))

	s.Equal(domain.ErrNoActiveTransaction, s.im.AdminFinalize(c, arbiter, "GPS9999", "QmDoc2"))
}
