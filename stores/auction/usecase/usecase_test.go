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
	"github.com/deedchain/goapi/stores/auction/repository"
	escrowRepository "github.com/deedchain/goapi/stores/escrow/repository"
	ledgerRepository "github.com/deedchain/goapi/stores/ledger/repository"
	ledgerUsecase "github.com/deedchain/goapi/stores/ledger/usecase"
	propertyRepository "github.com/deedchain/goapi/stores/property/repository"
)

const (
	arbiter = domain.Address("0xa12b")
	seller  = domain.Address("0x0001")
	bidderA = domain.Address("0x000a")
	bidderB = domain.Address("0x000b")
	gps     = domain.Location("GPS1234")

	eth = domain.Amount(1000000000000000000)
)

// faultyAuctionRepo fails Update on demand to exercise partial-write paths
type faultyAuctionRepo struct {
	auction.Repo
	failUpdate bool
}

func (r *faultyAuctionRepo) Update(c ctx.Ctx, gps domain.Location, updater *auction.Updater) error {
	if r.failUpdate {
		return domain.ErrInternalServerError
	}
	return r.Repo.Update(c, gps, updater)
}

type auctionSuite struct {
	suite.Suite

	repo         *faultyAuctionRepo
	propertyRepo property.Repo
	escrowRepo   escrow.Repo
	ledger       ledger.Usecase
	im           *impl

	now time.Time
}

func TestAuctionSuite(t *testing.T) {
	suite.Run(t, new(auctionSuite))
}

func (s *auctionSuite) SetupTest() {
	mu := &sync.Mutex{}
	activityUC := activityUsecase.New(activityRepository.NewMemory())

	s.repo = &faultyAuctionRepo{Repo: repository.NewMemory()}
	s.propertyRepo = propertyRepository.NewMemory()
	s.escrowRepo = escrowRepository.NewMemory()
	s.ledger = ledgerUsecase.New(&ledgerUsecase.LedgerUseCaseCfg{
		Repo:     ledgerRepository.NewMemory(),
		Activity: activityUC,
		Mu:       mu,
	})
	s.im = New(&AuctionUseCaseCfg{
		Repo:         s.repo,
		PropertyRepo: s.propertyRepo,
		EscrowRepo:   s.escrowRepo,
		Ledger:       s.ledger,
		Activity:     activityUC,
		Arbiter:      arbiter,
		Mu:           mu,
	}).(*impl)

	s.now = time.Now()
	timeNow = func() time.Time { return s.now }

	s.NoError(s.propertyRepo.Insert(ctx.Background(), &property.Property{
		Gps:      gps,
		Location: "12 Harbor Street",
		Owner:    seller,
		DocHash:  "QmDoc1",
		Verified: true,
	}))
}

func (s *auctionSuite) TearDownTest() {
	timeNow = time.Now
}

func (s *auctionSuite) open() *auction.Auction {
	a, err := s.im.Open(ctx.Background(), seller, gps, eth, time.Hour, auction.ListingFee(eth))
	s.NoError(err)
	return a
}

func (s *auctionSuite) TestOpen() {
	c := ctx.Background()

	a := s.open()
	s.Equal(eth, a.HighestBid)
	s.True(a.Active)
	s.False(a.HasBid())

	// listing fee went to the arbiter
	fee, err := s.ledger.BalanceOf(c, arbiter)
	s.NoError(err)
	s.Equal(auction.ListingFee(eth), fee)

	_, err = s.im.Open(c, seller, gps, eth, time.Hour, auction.ListingFee(eth))
	s.Equal(domain.ErrAuctionAlreadyActive, err)
}

func (s *auctionSuite) TestOpenChecks() {
	c := ctx.Background()

	_, err := s.im.Open(c, bidderA, gps, eth, time.Hour, auction.ListingFee(eth))
	s.Equal(domain.ErrUnauthorized, err)

	_, err = s.im.Open(c, seller, "GPS9999", eth, time.Hour, auction.ListingFee(eth))
	s.Equal(domain.ErrNotFound, err)

	_, err = s.im.Open(c, seller, gps, 0, time.Hour, 0)
	s.Equal(domain.ErrInvalidAmount, err)

	_, err = s.im.Open(c, seller, gps, eth, time.Hour, auction.ListingFee(eth)-1)
	s.Equal(domain.ErrInsufficientFee, err)

	s.NoError(s.propertyRepo.Insert(c, &property.Property{
		Gps:      "GPS5678",
		Owner:    seller,
		Verified: false,
	}))
	_, err = s.im.Open(c, seller, "GPS5678", eth, time.Hour, auction.ListingFee(eth))
	s.Equal(domain.ErrNotVerified, err)
}

func (s *auctionSuite) TestBidMonotonicWithExactOutbidCredit() {
	c := ctx.Background()
	s.open()

	bid1 := eth + eth/2 // 1.5
	bid2 := 2 * eth     // 2.0

	s.NoError(s.im.Bid(c, bidderA, gps, bid1))

	// equal or lower re-bid is rejected
	s.Equal(domain.ErrInvalidAmount, s.im.Bid(c, bidderB, gps, bid1))
	s.Equal(domain.ErrInvalidAmount, s.im.Bid(c, bidderB, gps, eth))

	s.NoError(s.im.Bid(c, bidderB, gps, bid2))

	// the outbid stake is withdrawable, exactly once and in full
	bal, err := s.ledger.BalanceOf(c, bidderA)
	s.NoError(err)
	s.Equal(bid1, bal)

	a, err := s.im.Get(c, gps)
	s.NoError(err)
	s.Equal(bidderB, a.HighestBidder)
	s.Equal(bid2, a.HighestBid)
}

func (s *auctionSuite) TestBidFloorIsStartingPrice() {
	c := ctx.Background()
	s.open()

	s.Equal(domain.ErrInvalidAmount, s.im.Bid(c, bidderA, gps, eth))
	s.NoError(s.im.Bid(c, bidderA, gps, eth+1))

	// the first bid leaves no pending balance behind
	bal, err := s.ledger.BalanceOf(c, bidderA)
	s.NoError(err)
	s.Equal(domain.Amount(0), bal)
}

func (s *auctionSuite) TestBidAfterEnd() {
	c := ctx.Background()
	s.open()

	s.now = s.now.Add(2 * time.Hour)
	s.Equal(domain.ErrAuctionEnded, s.im.Bid(c, bidderA, gps, 2*eth))
}

func (s *auctionSuite) TestCancel() {
	c := ctx.Background()
	s.open()

	s.Equal(domain.ErrUnauthorized, s.im.Cancel(c, bidderA, gps))

	// once a bid exists, the bid block wins over the seller check
	s.NoError(s.im.Bid(c, bidderA, gps, 2*eth))
	s.Equal(domain.ErrHasBids, s.im.Cancel(c, seller, gps))
	s.Equal(domain.ErrHasBids, s.im.Cancel(c, bidderB, gps))
}

func (s *auctionSuite) TestCancelWithoutBids() {
	c := ctx.Background()
	s.open()

	s.NoError(s.im.Cancel(c, seller, gps))
	a, err := s.im.Get(c, gps)
	s.NoError(err)
	s.False(a.Active)

	s.Equal(domain.ErrAuctionNotActive, s.im.Cancel(c, seller, gps))
}

func (s *auctionSuite) TestCheckTriggerAndCloseExactlyOnce() {
	c := ctx.Background()
	s.open()
	s.NoError(s.im.Bid(c, bidderA, gps, 2*eth))

	// nothing due yet
	due, data, err := s.im.CheckTrigger(c)
	s.NoError(err)
	s.False(due)
	s.Nil(data)

	s.now = s.now.Add(2 * time.Hour)

	due, data, err = s.im.CheckTrigger(c)
	s.NoError(err)
	s.True(due)
	s.Equal([]domain.Location{gps}, data.Locations)

	// trigger data survives the scheduler boundary as bytes
	raw, err := data.Encode()
	s.NoError(err)
	decoded, err := auction.DecodeTriggerData(raw)
	s.NoError(err)

	s.NoError(s.im.CloseTriggered(c, decoded))

	a, err := s.im.Get(c, gps)
	s.NoError(err)
	s.False(a.Active)

	// closing created the settlement entry
	t, err := s.escrowRepo.Get(c, gps)
	s.NoError(err)
	s.Equal(bidderA, t.Buyer)
	s.Equal(seller, t.Seller)
	s.Equal(2*eth, t.Amount)
	s.True(t.Active)

	// replaying the same trigger fails, closing is exactly once
	s.Equal(domain.ErrNotDue, s.im.CloseTriggered(c, decoded))

	due, _, err = s.im.CheckTrigger(c)
	s.NoError(err)
	s.False(due)
}

func (s *auctionSuite) TestCloseTriggeredWithoutBids() {
	c := ctx.Background()
	s.open()

	s.now = s.now.Add(2 * time.Hour)
	_, data, err := s.im.CheckTrigger(c)
	s.NoError(err)

	s.NoError(s.im.CloseTriggered(c, data))

	// no bid, no settlement entry
	_, err = s.escrowRepo.Get(c, gps)
	s.Equal(domain.ErrNotFound, err)
}

func (s *auctionSuite) TestBidUpdateFailureDoesNotRefundOutbid() {
	c := ctx.Background()
	s.open()
	s.NoError(s.im.Bid(c, bidderA, gps, eth+eth/2))

	// a failed write must not hand the standing bidder a refund while
	// their bid is still the highest
	s.repo.failUpdate = true
	s.Error(s.im.Bid(c, bidderB, gps, 2*eth))

	bal, err := s.ledger.BalanceOf(c, bidderA)
	s.NoError(err)
	s.Equal(domain.Amount(0), bal)

	a, err := s.im.Get(c, gps)
	s.NoError(err)
	s.Equal(bidderA, a.HighestBidder)
	s.Equal(eth+eth/2, a.HighestBid)

	s.repo.failUpdate = false
	s.NoError(s.im.Bid(c, bidderB, gps, 2*eth))
	bal, err = s.ledger.BalanceOf(c, bidderA)
	s.NoError(err)
	s.Equal(eth+eth/2, bal)
}

func (s *auctionSuite) TestCloseTriggeredSkipsClosedLocations() {
	c := ctx.Background()
	s.open()

	const gps2 = domain.Location("GPS5678")
	s.NoError(s.propertyRepo.Insert(c, &property.Property{
		Gps:      gps2,
		Owner:    seller,
		Verified: true,
	}))
	_, err := s.im.Open(c, seller, gps2, eth, time.Hour, auction.ListingFee(eth))
	s.NoError(err)

	s.now = s.now.Add(2 * time.Hour)

	// first keeper closes one of the two, the second batch still carries both
	s.NoError(s.im.CloseTriggered(c, &auction.TriggerData{Locations: []domain.Location{gps}}))
	s.NoError(s.im.CloseTriggered(c, &auction.TriggerData{Locations: []domain.Location{gps, gps2}}))

	a, err := s.im.Get(c, gps2)
	s.NoError(err)
	s.False(a.Active)

	// everything closed, nothing left to do
	s.Equal(domain.ErrNotDue, s.im.CloseTriggered(c, &auction.TriggerData{Locations: []domain.Location{gps, gps2}}))
}

func (s *auctionSuite) TestCloseTriggeredNotDue() {
	c := ctx.Background()
	s.open()

	s.Equal(domain.ErrNotDue, s.im.CloseTriggered(c, nil))
	s.Equal(domain.ErrNotDue, s.im.CloseTriggered(c, &auction.TriggerData{Locations: []domain.Location{gps}}))
}
