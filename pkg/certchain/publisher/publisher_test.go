package publisher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/certchain/certchain/pkg/certchain/publisher"
	"github.com/certchain/certchain/pkg/certchain/relay"
	"github.com/certchain/certchain/pkg/certchain/storage"
	mock_relay "github.com/certchain/certchain/test/mock/certchain/relay"
	mock_storage "github.com/certchain/certchain/test/mock/certchain/storage"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type PublisherTestSuite struct {
	suite.Suite

	ctx  context.Context
	ctrl *gomock.Controller

	outbox      *mock_storage.MockOutboxStorage
	tx          *mock_storage.MockTx
	relayClient *mock_relay.MockRelayClient
}

func TestPublisher(t *testing.T) {
	suite.Run(t, new(PublisherTestSuite))
}

func (s *PublisherTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.outbox = mock_storage.NewMockOutboxStorage(s.ctrl)
	s.tx = mock_storage.NewMockTx(s.ctrl)
	s.relayClient = mock_relay.NewMockRelayClient(s.ctrl)
}

func (s *PublisherTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *PublisherTestSuite) events() []storage.OutboxMsg {
	return []storage.OutboxMsg{
		{RecID: 1, Key: "0.0.5005", Kind: relay.TagCertificateMinted, Msg: []byte("minted")},
		{RecID: 2, Key: "0.0.5005", Kind: relay.TagCertificateRevoked, Msg: []byte("revoked")},
	}
}

func (s *PublisherTestSuite) newPublisher(batchSize int) *publisher.Publisher {
	return publisher.NewPublisher(
		publisher.WithBatchSize(batchSize),
		publisher.WithInterval(time.Hour),
		publisher.WithOutboxStorage(s.outbox),
		publisher.WithRelayClient(s.relayClient),
	)
}

func (s *PublisherTestSuite) TestFullBatchIsFollowedImmediately() {
	events := s.events()
	p := s.newPublisher(len(events))

	gomock.InOrder(
		s.outbox.EXPECT().CreateTx(gomock.Any(), gomock.Len(1)).Return(s.tx, s.ctx, nil),
		s.outbox.EXPECT().GetConsensusOutbox(gomock.Any(), s.tx, 2).Return(events, nil),
		s.relayClient.EXPECT().Publish(gomock.Any(), "0.0.5005", relay.TagCertificateMinted, []byte("minted")).Return(nil),
		s.relayClient.EXPECT().Publish(gomock.Any(), "0.0.5005", relay.TagCertificateRevoked, []byte("revoked")).Return(nil),
		s.outbox.EXPECT().DeleteConsensusOutbox(gomock.Any(), s.tx, int64(1), int64(2)).Return(nil),
		s.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
		s.outbox.EXPECT().CreateTx(gomock.Any(), gomock.Len(1)).Return(s.tx, s.ctx, nil),
		s.outbox.EXPECT().GetConsensusOutbox(gomock.Any(), s.tx, 2).Return(nil, nil),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	p.Start()
	time.Sleep(500 * time.Millisecond)
	p.Stop()
}

func (s *PublisherTestSuite) TestShortBatchWaitsForInterval() {
	events := s.events()
	p := s.newPublisher(10)

	gomock.InOrder(
		s.outbox.EXPECT().CreateTx(gomock.Any(), gomock.Len(1)).Return(s.tx, s.ctx, nil),
		s.outbox.EXPECT().GetConsensusOutbox(gomock.Any(), s.tx, 10).Return(events, nil),
		s.relayClient.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2),
		s.outbox.EXPECT().DeleteConsensusOutbox(gomock.Any(), s.tx, int64(1), int64(2)).Return(nil),
		s.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	p.Start()
	time.Sleep(500 * time.Millisecond)
	p.Stop()
}

func (s *PublisherTestSuite) TestFailureRemovesOnlyRelayedEvents() {
	events := s.events()
	p := s.newPublisher(10)

	gomock.InOrder(
		s.outbox.EXPECT().CreateTx(gomock.Any(), gomock.Len(1)).Return(s.tx, s.ctx, nil),
		s.outbox.EXPECT().GetConsensusOutbox(gomock.Any(), s.tx, 10).Return(events, nil),
		s.relayClient.EXPECT().Publish(gomock.Any(), "0.0.5005", relay.TagCertificateMinted, []byte("minted")).Return(nil),
		s.relayClient.EXPECT().Publish(gomock.Any(), "0.0.5005", relay.TagCertificateRevoked, []byte("revoked")).Return(errors.New("relay down")),
		s.outbox.EXPECT().DeleteConsensusOutbox(gomock.Any(), s.tx, int64(1)).Return(nil),
		s.tx.EXPECT().Commit(gomock.Any()).Return(nil),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	p.Start()
	time.Sleep(500 * time.Millisecond)
	p.Stop()
}

func (s *PublisherTestSuite) TestFirstFailureKeepsOutbox() {
	events := s.events()[:1]
	p := s.newPublisher(10)

	gomock.InOrder(
		s.outbox.EXPECT().CreateTx(gomock.Any(), gomock.Len(1)).Return(s.tx, s.ctx, nil),
		s.outbox.EXPECT().GetConsensusOutbox(gomock.Any(), s.tx, 10).Return(events, nil),
		s.relayClient.EXPECT().Publish(gomock.Any(), "0.0.5005", relay.TagCertificateMinted, []byte("minted")).Return(errors.New("relay down")),
		s.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	p.Start()
	time.Sleep(500 * time.Millisecond)
	p.Stop()
}

func (s *PublisherTestSuite) TestStopWithoutStart() {
	s.newPublisher(10).Stop()
}
