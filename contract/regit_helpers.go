package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"regit/ledger"
	"regit/model"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Core Helper Methods (used across multiple operations) ---

// txScope bundles the registries and the event buffer of one transaction invocation.
// It is created at the start of a transaction function and dropped at its end.
type txScope struct {
	stub        shim.ChaincodeStubInterface
	txID        string
	now         time.Time
	members     *ledger.Registry[model.Member]
	information *ledger.Registry[model.InformationAsset]
	requests    *ledger.Registry[model.Request]
	shared      *ledger.Registry[model.SharedInformation]
	policies    *ledger.Registry[model.RetentionPolicy]
	events      *ledger.EventBuffer
}

func (s *RegitSmartContract) newTxScope(ctx contractapi.TransactionContextInterface) (*txScope, error) {
	stub := ctx.GetStub()
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, err
	}
	return &txScope{
		stub:        stub,
		txID:        stub.GetTxID(),
		now:         now,
		members:     ledger.NewRegistry(stub, memberObjectType, func(m *model.Member) string { return m.ID }),
		information: ledger.NewRegistry(stub, informationObjectType, func(a *model.InformationAsset) string { return a.ID }),
		requests:    ledger.NewRegistry(stub, requestObjectType, func(r *model.Request) string { return r.ID }),
		shared:      ledger.NewRegistry(stub, sharedInformationObjectType, func(si *model.SharedInformation) string { return si.ID }),
		policies:    ledger.NewRegistry(stub, retentionPolicyObjectType, func(*model.RetentionPolicy) string { return retentionPolicyID }),
		events:      ledger.NewEventBuffer(stub),
	}, nil
}

// commit publishes the buffered events. It runs after every registry write of the
// transaction succeeded, so a failed write never leaves an event behind.
func (tx *txScope) commit() error {
	return tx.events.Flush()
}

// getCurrentTxTimestamp retrieves the current transaction timestamp from the stub.
func (s *RegitSmartContract) getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

// resolveCaller maps the invoking certificate to its member record.
func (s *RegitSmartContract) resolveCaller(ctx contractapi.TransactionContextInterface, tx *txScope) (*model.Member, error) {
	return NewIdentityManager(ctx).ResolveCurrentMember(tx.members)
}

// getMember loads a member, reporting model.ErrMemberNotFound when it is not registered.
func (tx *txScope) getMember(memberID string) (*model.Member, error) {
	m, err := tx.members.Get(memberID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("member '%s': %w", memberID, model.ErrMemberNotFound)
		}
		return nil, err
	}
	return m, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

// disclosureID renders the receipt id of a request-originated disclosure.
func disclosureID(t time.Time) string {
	return t.UTC().Format(sharedInformationIDLayout)
}

// --- Validation Helper Functions ---
func (s *RegitSmartContract) validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%s cannot be empty: %w", field, model.ErrInvalidArgument)
	}
	if len(input) > max {
		return fmt.Errorf("%s exceeds max length %d: %w", field, max, model.ErrInvalidArgument)
	}
	return nil
}

func (s *RegitSmartContract) validateOptionalString(input, field string, max int) error {
	if input != "" && len(input) > max {
		return fmt.Errorf("%s exceeds max length %d: %w", field, max, model.ErrInvalidArgument)
	}
	return nil
}

func (s *RegitSmartContract) validateFields(fields map[string]string) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty: %w", model.ErrInvalidArgument)
	}
	if len(fields) > maxInformationFields {
		return fmt.Errorf("fields has %d entries, exceeding maximum of %d: %w", len(fields), maxInformationFields, model.ErrInvalidArgument)
	}
	for name, value := range fields {
		if err := s.validateRequiredString(name, "field name", maxStringInputLength); err != nil {
			return err
		}
		if err := s.validateOptionalString(value, fmt.Sprintf("fields[%s]", name), maxFieldValueLength); err != nil {
			return err
		}
	}
	return nil
}
