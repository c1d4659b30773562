package contract

import (
	"encoding/json"

	"regit/ledger"
	"regit/model"
)

type batchEntry struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *contractSuite) TestRemoveHighQuantityInformations() {
	s.register("admin", "bob")
	s.Require().NoError(s.cc.MakeMemberAdmin(s.as("admin"), "admin"))
	s.createPassport("bob", "small", 10)
	s.createPassport("bob", "edge", 60)
	s.createPassport("bob", "large", 61)
	s.createPassport("bob", "huge", 100)
	s.events()

	removed, err := s.cc.RemoveHighQuantityInformations(s.as("admin"))
	s.Require().NoError(err)
	s.Equal(2, removed)

	evts := s.events()
	s.Require().Len(evts, 1)
	s.Equal(ledger.BatchEventName, evts[0].name)
	batch := decode[[]batchEntry](s, evts[0].payload)
	s.Require().Len(batch, 2)
	var removedIDs []string
	for _, entry := range batch {
		s.Equal(model.EventRemoveNotification, entry.Type)
		notification := decode[model.RemoveNotification](s, entry.Payload)
		removedIDs = append(removedIDs, notification.Information.ID)
	}
	s.ElementsMatch([]string{"large", "huge"}, removedIDs)

	tx, err := s.cc.newTxScope(s.as("admin"))
	s.Require().NoError(err)
	left, err := tx.information.All()
	s.Require().NoError(err)
	var leftIDs []string
	for _, a := range left {
		leftIDs = append(leftIDs, a.ID)
	}
	s.ElementsMatch([]string{"small", "edge"}, leftIDs)

	removed, err = s.cc.RemoveHighQuantityInformations(s.as("admin"))
	s.Require().NoError(err)
	s.Zero(removed)
	s.Empty(s.events())
}

func (s *contractSuite) TestRemoveSingleInformationPublishesPlainEvent() {
	s.register("admin", "bob")
	s.Require().NoError(s.cc.MakeMemberAdmin(s.as("admin"), "admin"))
	s.createPassport("bob", "huge", 100)
	s.events()

	removed, err := s.cc.RemoveHighQuantityInformations(s.as("admin"))
	s.Require().NoError(err)
	s.Equal(1, removed)

	evts := s.events()
	s.Require().Len(evts, 1)
	s.Equal(model.EventRemoveNotification, evts[0].name)
	notification := decode[model.RemoveNotification](s, evts[0].payload)
	s.Equal("huge", notification.Information.ID)
	s.Equal(100, notification.Information.Quantity)
	s.NotContains(string(evts[0].payload), "X123")
}

func (s *contractSuite) TestSweepFailurePublishesNothing() {
	s.register("admin", "bob")
	s.Require().NoError(s.cc.MakeMemberAdmin(s.as("admin"), "admin"))
	s.createPassport("bob", "a-large", 61)
	s.createPassport("bob", "b-large", 70)
	s.createPassport("bob", "c-large", 80)
	s.createPassport("bob", "small", 1)
	s.events()

	ctx := s.as("admin")
	ctx.SetStub(&flakyDeleteStub{MockStub: s.stub, failAt: 2})
	removed, err := s.cc.RemoveHighQuantityInformations(ctx)
	s.ErrorIs(err, model.ErrPersistence)
	s.Zero(removed)
	s.Empty(s.events())

	// The mock ledger keeps the writes of the failed transaction; a peer would drop them.
	removed, err = s.cc.RemoveHighQuantityInformations(s.as("admin"))
	s.Require().NoError(err)
	s.Equal(2, removed)
	s.Len(s.events(), 1)

	tx, err := s.cc.newTxScope(s.as("admin"))
	s.Require().NoError(err)
	left, err := tx.information.All()
	s.Require().NoError(err)
	s.Require().Len(left, 1)
	s.Equal("small", left[0].ID)
}

func (s *contractSuite) TestRetentionThreshold() {
	s.register("admin", "bob")
	s.Require().NoError(s.cc.MakeMemberAdmin(s.as("admin"), "admin"))
	s.createPassport("bob", "small", 10)

	threshold, err := s.cc.GetRetentionThreshold(s.as("bob"))
	s.Require().NoError(err)
	s.Equal(defaultQuantityThreshold, threshold)

	err = s.cc.SetRetentionThreshold(s.as("bob"), 5)
	s.ErrorIs(err, model.ErrUnauthorized)
	err = s.cc.SetRetentionThreshold(s.as("admin"), -1)
	s.ErrorIs(err, model.ErrInvalidArgument)

	s.Require().NoError(s.cc.SetRetentionThreshold(s.as("admin"), 20))
	s.Require().NoError(s.cc.SetRetentionThreshold(s.as("admin"), 5))
	threshold, err = s.cc.GetRetentionThreshold(s.as("bob"))
	s.Require().NoError(err)
	s.Equal(5, threshold)

	removed, err := s.cc.RemoveHighQuantityInformations(s.as("admin"))
	s.Require().NoError(err)
	s.Equal(1, removed)
}

func (s *contractSuite) TestRemoveHighQuantityInformationsRequiresAdmin() {
	s.register("admin", "bob")
	s.Require().NoError(s.cc.MakeMemberAdmin(s.as("admin"), "admin"))
	s.createPassport("bob", "huge", 100)
	s.events()

	_, err := s.cc.RemoveHighQuantityInformations(s.as("bob"))
	s.ErrorIs(err, model.ErrUnauthorized)
	_, err = s.cc.RemoveHighQuantityInformations(s.as("mallory"))
	s.ErrorIs(err, model.ErrUnresolvedPrincipal)

	s.Equal(100, s.information("huge").Quantity)
	s.Empty(s.events())
}
