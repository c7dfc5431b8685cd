package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/auction"
	"github.com/deedchain/goapi/domain/property"
	activityRepository "github.com/deedchain/goapi/stores/activity/repository"
	activityUsecase "github.com/deedchain/goapi/stores/activity/usecase"
	auctionRepository "github.com/deedchain/goapi/stores/auction/repository"
	"github.com/deedchain/goapi/stores/property/repository"
)

const (
	arbiter = domain.Address("0xa12b")
	owner   = domain.Address("0x0001")
	other   = domain.Address("0x0002")
	gps     = domain.Location("GPS1234")
)

type propertySuite struct {
	suite.Suite

	repo        property.Repo
	auctionRepo auction.Repo
	im          *impl
}

func TestPropertySuite(t *testing.T) {
	suite.Run(t, new(propertySuite))
}

func (s *propertySuite) SetupTest() {
	s.repo = repository.NewMemory()
	s.auctionRepo = auctionRepository.NewMemory()
	s.im = New(&PropertyUseCaseCfg{
		Repo:        s.repo,
		AuctionRepo: s.auctionRepo,
		Activity:    activityUsecase.New(activityRepository.NewMemory()),
		Arbiter:     arbiter,
		Mu:          &sync.Mutex{},
	}).(*impl)
}

func (s *propertySuite) TestRegister() {
	c := ctx.Background()

	p, err := s.im.Register(c, owner, "12 Harbor Street", gps, "QmDoc1")
	s.NoError(err)
	s.Equal(owner, p.Owner)
	s.False(p.Verified)

	// same location can only be registered once, even by another caller
	_, err = s.im.Register(c, other, "12 Harbor Street", gps, "QmDoc2")
	s.Equal(domain.ErrAlreadyRegistered, err)

	_, err = s.im.Register(c, owner, "12 Harbor Street", gps, "QmDoc1")
	s.Equal(domain.ErrAlreadyRegistered, err)
}

func (s *propertySuite) TestVerify() {
	c := ctx.Background()

	_, err := s.im.Register(c, owner, "12 Harbor Street", gps, "QmDoc1")
	s.NoError(err)

	s.Equal(domain.ErrUnauthorized, s.im.Verify(c, owner, gps))
	s.Equal(domain.ErrNotFound, s.im.Verify(c, arbiter, "GPS9999"))

	s.NoError(s.im.Verify(c, arbiter, gps))
	p, err := s.im.Get(c, gps)
	s.NoError(err)
	s.True(p.Verified)

	// verifying twice is a no-op
	s.NoError(s.im.Verify(c, arbiter, gps))
}

func (s *propertySuite) TestUpdatePrice() {
	c := ctx.Background()

	_, err := s.im.Register(c, owner, "12 Harbor Street", gps, "QmDoc1")
	s.NoError(err)

	// no auction yet
	s.Equal(domain.ErrAuctionNotActive, s.im.UpdatePrice(c, owner, gps, 100))

	now := time.Now()
	s.NoError(s.auctionRepo.Insert(c, &auction.Auction{
		Gps:           gps,
		Seller:        owner,
		StartingPrice: 100,
		HighestBid:    100,
		EndTime:       now.Add(time.Hour),
		Active:        true,
		CreatedAt:     now,
	}))

	s.Equal(domain.ErrUnauthorized, s.im.UpdatePrice(c, other, gps, 200))
	s.Equal(domain.ErrInvalidAmount, s.im.UpdatePrice(c, owner, gps, 0))

	s.NoError(s.im.UpdatePrice(c, owner, gps, 200))
	p, err := s.im.Get(c, gps)
	s.NoError(err)
	s.Equal(domain.Amount(200), p.Price)
	a, err := s.auctionRepo.Get(c, gps)
	s.NoError(err)
	s.Equal(domain.Amount(200), a.HighestBid)

	// a bid freezes the price
	bidder := other
	bid := domain.Amount(250)
	s.NoError(s.auctionRepo.Update(c, gps, &auction.Updater{
		HighestBidder: &bidder,
		HighestBid:    &bid,
	}))
	s.Equal(domain.ErrAuctionLocked, s.im.UpdatePrice(c, owner, gps, 300))
}
