package contract

import (
	"time"

	"regit/model"

	"github.com/google/uuid"
)

func (s *contractSuite) TestRequestAndAcceptFlow() {
	s.register("alice", "bob")
	s.createPassport("bob", "bob-passport", 1)
	s.events()

	req, err := s.cc.RequestInformation(s.as("alice"), "bob", "bob-passport", "passportNumber")
	s.Require().NoError(err)
	s.Equal(model.RequestPending, req.State)
	s.Equal("alice", req.Creator)
	s.Equal("bob", req.Assignee)

	evts := s.events()
	s.Require().Len(evts, 1)
	s.Equal(model.EventRequestInformation, evts[0].name)
	reqEvt := decode[model.RequestInformationEvent](s, evts[0].payload)
	s.Equal("alice", reqEvt.Creator)
	s.Equal("bob", reqEvt.Assignee)

	pending, err := s.cc.GetMyPendingRequests(s.as("bob"), "10", "")
	s.Require().NoError(err)
	s.Require().Len(pending.Requests, 1)
	s.Equal(req.ID, pending.Requests[0].ID)
	s.Empty(pending.NextBookmark)

	receipt, err := s.cc.AcceptRequest(s.as("bob"), req.ID, "bob-passport")
	s.Require().NoError(err)
	s.Equal("bob", receipt.Owner)
	s.Equal("alice", receipt.Viewer)
	s.Equal("X123", receipt.SharedValue)
	s.Equal("passportNumber", receipt.FieldName)
	s.Equal(req.ID, receipt.SourceID)

	at, err := time.Parse(sharedInformationIDLayout, receipt.ID)
	s.Require().NoError(err)
	s.True(at.Equal(receipt.SharedAt))

	stored, err := s.cc.GetRequest(s.as("alice"), req.ID)
	s.Require().NoError(err)
	s.Equal(model.RequestDone, stored.State)

	pending, err = s.cc.GetMyPendingRequests(s.as("bob"), "10", "")
	s.Require().NoError(err)
	s.Empty(pending.Requests)

	mine, err := s.cc.GetMySharedInformation(s.as("alice"), "10", "")
	s.Require().NoError(err)
	s.Require().Len(mine.Receipts, 1)
	s.Equal(receipt.ID, mine.Receipts[0].ID)
	s.Equal(int32(1), mine.FetchedCount)
}

func (s *contractSuite) TestGetMyPendingRequestsPages() {
	s.register("alice", "bob", "carol")
	var want []string
	for i := 0; i < 3; i++ {
		req, err := s.cc.RequestInformation(s.as("alice"), "bob", "", "nationality")
		s.Require().NoError(err)
		want = append(want, req.ID)
	}
	_, err := s.cc.RequestInformation(s.as("bob"), "carol", "", "nationality")
	s.Require().NoError(err)

	first, err := s.cc.GetMyPendingRequests(s.as("bob"), "2", "")
	s.Require().NoError(err)
	s.Len(first.Requests, 2)
	s.Equal(int32(2), first.FetchedCount)
	s.Require().NotEmpty(first.NextBookmark)

	second, err := s.cc.GetMyPendingRequests(s.as("bob"), "2", first.NextBookmark)
	s.Require().NoError(err)
	s.Len(second.Requests, 1)
	s.Empty(second.NextBookmark)

	var got []string
	for _, r := range append(first.Requests, second.Requests...) {
		got = append(got, r.ID)
	}
	s.ElementsMatch(want, got)

	all, err := s.cc.GetMyPendingRequests(s.as("bob"), "not-a-number", "")
	s.Require().NoError(err)
	s.Len(all.Requests, 3)
}

func (s *contractSuite) TestRequestFulfilledOnce() {
	s.register("alice", "bob")
	s.createPassport("bob", "bob-passport", 1)

	req, err := s.cc.RequestInformation(s.as("alice"), "bob", "", "nationality")
	s.Require().NoError(err)
	_, err = s.cc.AcceptRequest(s.as("bob"), req.ID, "bob-passport")
	s.Require().NoError(err)

	_, err = s.cc.AcceptRequest(s.as("bob"), req.ID, "bob-passport")
	s.ErrorIs(err, model.ErrAlreadyFulfilled)
	s.Len(s.receipts(), 1)
}

func (s *contractSuite) TestReceiptKeepsValueAtDisclosure() {
	s.register("alice", "bob")
	s.createPassport("bob", "bob-passport", 1)

	req, err := s.cc.RequestInformation(s.as("alice"), "bob", "bob-passport", "passportNumber")
	s.Require().NoError(err)
	receipt, err := s.cc.AcceptRequest(s.as("bob"), req.ID, "bob-passport")
	s.Require().NoError(err)

	s.Require().NoError(s.cc.UpdateInformationField(s.as("bob"), "bob-passport", "passportNumber", "Y999"))
	s.Equal("Y999", s.information("bob-passport").Fields["passportNumber"])

	got, err := s.cc.GetSharedInformation(s.as("alice"), receipt.ID)
	s.Require().NoError(err)
	s.Equal("X123", got.SharedValue)
}

func (s *contractSuite) TestAcceptRequestRejections() {
	s.register("alice", "bob", "carol")
	s.createPassport("bob", "bob-passport", 1)
	s.createPassport("carol", "carol-passport", 1)

	req, err := s.cc.RequestInformation(s.as("alice"), "bob", "", "shoeSize")
	s.Require().NoError(err)

	_, err = s.cc.AcceptRequest(s.as("alice"), req.ID, "bob-passport")
	s.ErrorIs(err, model.ErrUnauthorized)

	_, err = s.cc.AcceptRequest(s.as("bob"), req.ID, "carol-passport")
	s.ErrorIs(err, model.ErrUnauthorized)

	_, err = s.cc.AcceptRequest(s.as("bob"), req.ID, "bob-passport")
	s.ErrorIs(err, model.ErrInvalidFieldReference)

	_, err = s.cc.AcceptRequest(s.as("bob"), "no-such-request", "bob-passport")
	s.ErrorIs(err, model.ErrNotFound)

	stored, err := s.cc.GetRequest(s.as("bob"), req.ID)
	s.Require().NoError(err)
	s.Equal(model.RequestPending, stored.State)
	s.Empty(s.receipts())

	_, err = s.cc.GetRequest(s.as("carol"), req.ID)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *contractSuite) TestRequestInformationRejections() {
	s.register("alice", "bob")
	s.createPassport("bob", "bob-passport", 1)
	s.events()

	_, err := s.cc.RequestInformation(s.as("alice"), "alice", "", "nationality")
	s.ErrorIs(err, model.ErrSelfReference)

	_, err = s.cc.RequestInformation(s.as("alice"), "ghost", "", "nationality")
	s.ErrorIs(err, model.ErrMemberNotFound)

	_, err = s.cc.RequestInformation(s.as("alice"), "bob", "bob-passport", "shoeSize")
	s.ErrorIs(err, model.ErrInvalidFieldReference)

	_, err = s.cc.RequestInformation(s.as("mallory"), "bob", "", "nationality")
	s.ErrorIs(err, model.ErrUnresolvedPrincipal)

	_, err = s.cc.RequestInformation(s.as("alice"), "bob", "", "")
	s.ErrorIs(err, model.ErrInvalidArgument)
	s.ErrorContains(err, "RequestInformation: ")

	s.Empty(s.events())
}

func (s *contractSuite) TestRequestIDsDeriveFromTransaction() {
	s.register("alice", "bob")

	req, err := s.cc.RequestInformation(s.as("alice"), "bob", "", "nationality")
	s.Require().NoError(err)
	s.Equal(uuid.NewSHA1(requestIDNamespace, []byte(s.stub.TxID)).String(), req.ID)

	again, err := s.cc.RequestInformation(s.as("alice"), "bob", "", "nationality")
	s.Require().NoError(err)
	s.NotEqual(req.ID, again.ID)
}

func (s *contractSuite) TestInformationReadAccess() {
	s.register("alice", "bob", "carol")
	s.createPassport("bob", "bob-passport", 1)

	_, err := s.cc.GetInformation(s.as("alice"), "bob-passport")
	s.ErrorIs(err, model.ErrUnauthorized)

	s.Require().NoError(s.cc.AuthorizeAccess(s.as("bob"), "alice"))
	got, err := s.cc.GetInformation(s.as("alice"), "bob-passport")
	s.Require().NoError(err)
	s.Equal("FR", got.Fields["nationality"])

	err = s.cc.UpdateInformationField(s.as("alice"), "bob-passport", "nationality", "DE")
	s.ErrorIs(err, model.ErrUnauthorized)

	_, err = s.cc.CreateInformation(s.as("carol"), "bob-passport", "BASIC", 1, `{"name":"Carol"}`)
	s.ErrorIs(err, model.ErrDuplicateID)
	_, err = s.cc.CreateInformation(s.as("carol"), "carol-doc", "DIARY", 1, `{"name":"Carol"}`)
	s.ErrorIs(err, model.ErrInvalidArgument)
	_, err = s.cc.CreateInformation(s.as("carol"), "carol-doc", "BASIC", 1, `{}`)
	s.ErrorIs(err, model.ErrInvalidArgument)
}
