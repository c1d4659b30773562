package contract

import (
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"

	"regit/model"

	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/suite"
)

// fakeIdentity stands in for the certificate of the invoking client.
type fakeIdentity struct {
	id  string
	msp string
}

func (f *fakeIdentity) GetID() (string, error)    { return f.id, nil }
func (f *fakeIdentity) GetMSPID() (string, error) { return f.msp, nil }
func (f *fakeIdentity) GetAttributeValue(string) (string, bool, error) {
	return "", false, nil
}
func (f *fakeIdentity) AssertAttributeValue(string, string) error {
	return errors.New("attributes are not supported")
}
func (f *fakeIdentity) GetX509Certificate() (*x509.Certificate, error) { return nil, nil }

// failingStub rejects every write, as a peer would on an unavailable state database.
type failingStub struct {
	*shimtest.MockStub
}

func (f *failingStub) PutState(key string, value []byte) error {
	return fmt.Errorf("state database unavailable for key %q", key)
}

// flakyDeleteStub fails the failAt-th DelState call and passes every other one through.
type flakyDeleteStub struct {
	*shimtest.MockStub
	failAt int
	calls  int
}

func (f *flakyDeleteStub) DelState(key string) error {
	f.calls++
	if f.calls == f.failAt {
		return fmt.Errorf("state database unavailable for key %q", key)
	}
	return f.MockStub.DelState(key)
}

type published struct {
	name    string
	payload []byte
}

type contractSuite struct {
	suite.Suite
	stub *shimtest.MockStub
	cc   *RegitSmartContract
	txn  int
}

func (s *contractSuite) SetupTest() {
	s.stub = shimtest.NewMockStub("regit", nil)
	s.cc = new(RegitSmartContract)
	s.txn = 0
}

// as starts a fresh transaction invoked by the certificate of name.
func (s *contractSuite) as(name string) *contractapi.TransactionContext {
	if s.stub.TxID != "" {
		s.stub.MockTransactionEnd(s.stub.TxID)
	}
	s.txn++
	s.stub.MockTransactionStart(fmt.Sprintf("tx%d", s.txn))

	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(s.stub)
	ctx.SetClientIdentity(&fakeIdentity{id: "x509::CN=" + name + "::CN=ca.org1", msp: "Org1MSP"})
	return ctx
}

func (s *contractSuite) register(names ...string) {
	for _, name := range names {
		_, err := s.cc.RegisterMember(s.as(name), name, name, "Test")
		s.Require().NoError(err)
	}
}

// events drains the chaincode events published so far.
func (s *contractSuite) events() []published {
	var out []published
	for len(s.stub.ChaincodeEventsChannel) > 0 {
		evt := <-s.stub.ChaincodeEventsChannel
		out = append(out, published{name: evt.EventName, payload: evt.Payload})
	}
	return out
}

func (s *contractSuite) member(id string) *model.Member {
	tx, err := s.cc.newTxScope(s.as(id))
	s.Require().NoError(err)
	m, err := tx.members.Get(id)
	s.Require().NoError(err)
	return m
}

func (s *contractSuite) information(id string) *model.InformationAsset {
	tx, err := s.cc.newTxScope(s.as("inspector"))
	s.Require().NoError(err)
	a, err := tx.information.Get(id)
	s.Require().NoError(err)
	return a
}

func (s *contractSuite) receipts() []*model.SharedInformation {
	tx, err := s.cc.newTxScope(s.as("inspector"))
	s.Require().NoError(err)
	all, err := tx.shared.All()
	s.Require().NoError(err)
	return all
}

func (s *contractSuite) createPassport(owner, id string, quantity int) *model.InformationAsset {
	asset, err := s.cc.CreateInformation(s.as(owner), id, "passport", quantity,
		`{"passportNumber":"X123","nationality":"FR"}`)
	s.Require().NoError(err)
	return asset
}

func decode[T any](s *contractSuite, raw []byte) T {
	var v T
	s.Require().NoError(json.Unmarshal(raw, &v))
	return v
}
