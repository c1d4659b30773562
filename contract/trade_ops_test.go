package contract

import (
	"regit/model"
)

func (s *contractSuite) TestTradeInformation() {
	s.register("alice", "bob", "carol")
	s.createPassport("bob", "bob-passport", 1)
	s.events()

	receipt, err := s.cc.TradeInformation(s.as("bob"), "bob-passport", "alice", "nationality")
	s.Require().NoError(err)
	s.Equal("bob-passport", receipt.ID)
	s.Equal("bob", receipt.Owner)
	s.Equal("alice", receipt.Viewer)
	s.Equal("FR", receipt.SharedValue)

	asset := s.information("bob-passport")
	s.Equal("alice", asset.Viewer)
	s.Equal("bob", asset.Owner)

	evts := s.events()
	s.Require().Len(evts, 1)
	s.Equal(model.EventTradeNotification, evts[0].name)
	notification := decode[model.TradeNotification](s, evts[0].payload)
	s.Equal("alice", notification.Information.Viewer)
	s.Equal("bob-passport", notification.Information.ID)
	s.NotContains(string(evts[0].payload), "X123")
	s.NotContains(string(evts[0].payload), "FR")

	got, err := s.cc.GetInformation(s.as("alice"), "bob-passport")
	s.Require().NoError(err)
	s.Equal("X123", got.Fields["passportNumber"])

	_, err = s.cc.TradeInformation(s.as("bob"), "bob-passport", "carol", "nationality")
	s.ErrorIs(err, model.ErrDuplicateID)
	s.Equal("alice", s.information("bob-passport").Viewer)
	s.Empty(s.events())
	s.Len(s.receipts(), 1)
}

func (s *contractSuite) TestTradeInformationRejections() {
	s.register("alice", "bob")
	s.createPassport("bob", "bob-passport", 1)
	s.events()

	_, err := s.cc.TradeInformation(s.as("alice"), "bob-passport", "alice", "nationality")
	s.ErrorIs(err, model.ErrUnauthorized)

	_, err = s.cc.TradeInformation(s.as("bob"), "bob-passport", "alice", "shoeSize")
	s.ErrorIs(err, model.ErrInvalidFieldReference)

	_, err = s.cc.TradeInformation(s.as("bob"), "bob-passport", "ghost", "nationality")
	s.ErrorIs(err, model.ErrMemberNotFound)

	_, err = s.cc.TradeInformation(s.as("bob"), "no-such-doc", "alice", "nationality")
	s.ErrorIs(err, model.ErrNotFound)

	_, err = s.cc.TradeInformation(s.as("bob"), "bob-passport", "", "nationality")
	s.ErrorIs(err, model.ErrInvalidArgument)
	s.ErrorContains(err, "TradeInformation: ")

	s.Equal("bob", s.information("bob-passport").Viewer)
	s.Empty(s.receipts())
	s.Empty(s.events())
}
