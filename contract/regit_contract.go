package contract

import (
	"fmt"

	"regit/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("regit.contract")

// Object types for composite keys, also used as 'objectType' in CouchDB queries.
const (
	memberObjectType            = "Member"
	informationObjectType       = "InformationAsset"
	requestObjectType           = "Request"
	sharedInformationObjectType = "SharedInformation"
	retentionPolicyObjectType   = "RetentionPolicy"
)

// Constants for input validation and limits
const (
	maxStringInputLength     = 256
	maxFieldValueLength      = 4096
	maxInformationFields     = 64
	defaultQuantityThreshold = 60 // Assets above this quantity are swept unless a policy overrides it
	retentionPolicyID        = "default"
	defaultPageSize          = 10
	maxPageSize              = 100
)

// sharedInformationIDLayout renders request receipt ids. Fixed-width fractional seconds keep
// lexical order equal to creation order.
const sharedInformationIDLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RegitSmartContract manages member authorizations and field-level information sharing.
// @contract:RegitSmartContract
type RegitSmartContract struct {
	contractapi.Contract
}

// Instantiate is called during chaincode instantiation.
func (s *RegitSmartContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("RegitSmartContract Instantiated/Upgraded")
}

// --- Identity & Admin Wrappers (Delegating to IdentityManager) ---

// RegisterMember onboards the caller's certificate as a new member.
func (s *RegitSmartContract) RegisterMember(ctx contractapi.TransactionContextInterface, memberID, firstName, lastName string) (*model.Member, error) {
	logger.Infof("Chaincode Call: RegisterMember '%s'", memberID)
	if err := s.validateRequiredString(memberID, "memberID", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("RegisterMember: %w", err)
	}
	if err := s.validateOptionalString(firstName, "firstName", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("RegisterMember: %w", err)
	}
	if err := s.validateOptionalString(lastName, "lastName", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("RegisterMember: %w", err)
	}

	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, err
	}
	exists, err := tx.members.Exists(memberID)
	if err != nil {
		return nil, fmt.Errorf("RegisterMember: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("RegisterMember: member '%s' already exists: %w", memberID, model.ErrDuplicateID)
	}
	// Binding first: it refuses identities that already act as another member.
	if _, err := NewIdentityManager(ctx).BindCurrentIdentity(memberID, tx.now); err != nil {
		return nil, fmt.Errorf("RegisterMember: %w", err)
	}
	member := &model.Member{
		ObjectType:   memberObjectType,
		ID:           memberID,
		FirstName:    firstName,
		LastName:     lastName,
		Authorized:   []string{},
		RegisteredAt: tx.now,
	}
	if err := tx.members.Add(member); err != nil {
		return nil, fmt.Errorf("RegisterMember: %w", err)
	}
	logger.Infof("Member '%s' registered", memberID)
	return member, nil
}

// MakeMemberAdmin grants maintenance rights to a member. The first admin may appoint itself.
func (s *RegitSmartContract) MakeMemberAdmin(ctx contractapi.TransactionContextInterface, memberID string) error {
	logger.Infof("Chaincode Call: MakeAdmin for '%s'", memberID)
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return err
	}
	return NewIdentityManager(ctx).MakeAdmin(tx.members, memberID)
}

// RemoveMemberAdmin withdraws maintenance rights from a member.
func (s *RegitSmartContract) RemoveMemberAdmin(ctx contractapi.TransactionContextInterface, memberID string) error {
	logger.Infof("Chaincode Call: RemoveAdmin for '%s'", memberID)
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return err
	}
	return NewIdentityManager(ctx).RemoveAdmin(tx.members, memberID)
}
