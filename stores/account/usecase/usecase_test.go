package usecase

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/ethereum"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/account"
	"github.com/deedchain/goapi/stores/account/repository"
)

const signatureMsg = "Approve this request by signing the one time nonce: %s"

type accountSuite struct {
	suite.Suite

	repo account.Repo
	im   *impl
}

func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(accountSuite))
}

func (s *accountSuite) SetupTest() {
	s.repo = repository.NewMemory()
	s.im = New(&AccountUseCaseCfg{
		Repo:         s.repo,
		SignatureMsg: signatureMsg,
		Arbiters:     []domain.Address{"0xarb"},
	}).(*impl)
}

func (s *accountSuite) TestCreateAndGet() {
	c := ctx.Background()
	address := domain.Address("0xABC")

	_, err := s.im.Get(c, address)
	s.Equal(domain.ErrNotFound, err)

	info, err := s.im.Create(c, address)
	s.NoError(err)
	s.Equal(address, info.Address)
	s.False(info.IsArbiter)

	info, err = s.im.Get(c, address)
	s.NoError(err)
	s.Equal(address.ToLower(), info.Address)
}

func (s *accountSuite) TestArbiterFlag() {
	c := ctx.Background()
	info, err := s.im.Create(c, "0xArb")
	s.NoError(err)
	s.True(info.IsArbiter)
}

func (s *accountSuite) TestGenerateNonceCreatesAccount() {
	c := ctx.Background()
	address := domain.Address("0xdef")

	nonce, err := s.im.GenerateNonce(c, address)
	s.NoError(err)
	s.Greater(nonce, int32(0))

	a, err := s.repo.Get(c, address)
	s.NoError(err)
	s.Equal(nonce, a.Nonce)
}

func (s *accountSuite) TestValidateSignature() {
	c := ctx.Background()

	privateKey, publicKey, err := ethereum.GenerateKey()
	s.NoError(err)
	address := domain.Address(crypto.PubkeyToAddress(*publicKey).Hex())

	// no nonce generated yet
	_, err = s.im.Create(c, address)
	s.NoError(err)
	s.Equal(account.ErrInvalidNonce, s.im.ValidateSignature(c, address, "0x00"))

	nonce, err := s.im.GenerateNonce(c, address)
	s.NoError(err)

	message := []byte(fmt.Sprintf(signatureMsg, strconv.Itoa(int(nonce))))
	signature, err := crypto.Sign(accounts.TextHash(message), privateKey)
	s.NoError(err)

	s.NoError(s.im.ValidateSignature(c, address, hexutil.Encode(signature)))

	// nonce is single use
	s.Equal(account.ErrInvalidNonce, s.im.ValidateSignature(c, address, hexutil.Encode(signature)))
}

func (s *accountSuite) TestValidateSignatureWrongSigner() {
	c := ctx.Background()

	_, publicKey, err := ethereum.GenerateKey()
	s.NoError(err)
	otherKey, _, err := ethereum.GenerateKey()
	s.NoError(err)
	address := domain.Address(crypto.PubkeyToAddress(*publicKey).Hex())

	nonce, err := s.im.GenerateNonce(c, address)
	s.NoError(err)

	message := []byte(fmt.Sprintf(signatureMsg, strconv.Itoa(int(nonce))))
	signature, err := crypto.Sign(accounts.TextHash(message), otherKey)
	s.NoError(err)

	s.Equal(account.ErrInvalidSignature, s.im.ValidateSignature(c, address, hexutil.Encode(signature)))
}
