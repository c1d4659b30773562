package contract

import (
	"fmt"
	"strings"

	"regit/model"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// requestIDNamespace seeds deterministic request ids; every endorsing peer derives the
// same id from the same transaction.
var requestIDNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("regit.transactions.Request"))

// --- Disclosure Workflow ---

// RequestInformation asks assigneeID to disclose fieldName. informationID may be empty
// when the caller does not know which document holds the field.
func (s *RegitSmartContract) RequestInformation(ctx contractapi.TransactionContextInterface,
	assigneeID string, informationID string, fieldName string) (*model.Request, error) {

	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("RequestInformation: %w", err)
	}
	creator, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("RequestInformation: %w", err)
	}
	if err := s.validateRequiredString(assigneeID, "assigneeID", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("RequestInformation: %w", err)
	}
	if err := s.validateRequiredString(fieldName, "fieldName", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("RequestInformation: %w", err)
	}
	if err := s.validateOptionalString(informationID, "informationID", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("RequestInformation: %w", err)
	}
	if assigneeID == creator.ID {
		return nil, fmt.Errorf("RequestInformation: member '%s' cannot request from itself: %w", assigneeID, model.ErrSelfReference)
	}
	if _, err := tx.getMember(assigneeID); err != nil {
		return nil, fmt.Errorf("RequestInformation: %w", err)
	}
	if strings.TrimSpace(informationID) != "" {
		asset, err := tx.information.Get(informationID)
		if err != nil {
			return nil, fmt.Errorf("RequestInformation: %w", err)
		}
		if asset.Owner != assigneeID {
			return nil, fmt.Errorf("RequestInformation: information '%s' is not owned by '%s': %w", informationID, assigneeID, model.ErrInvalidArgument)
		}
		if _, err := asset.Field(fieldName); err != nil {
			return nil, fmt.Errorf("RequestInformation: %w", err)
		}
	}

	request := &model.Request{
		ObjectType:    requestObjectType,
		ID:            uuid.NewSHA1(requestIDNamespace, []byte(tx.txID)).String(),
		Creator:       creator.ID,
		Assignee:      assigneeID,
		InformationID: strings.TrimSpace(informationID),
		FieldName:     fieldName,
		State:         model.RequestPending,
		CreatedAt:     tx.now,
	}
	tx.events.Emit(model.RequestInformationEvent{Date: tx.now, Creator: creator.ID, Assignee: assigneeID})
	if err := tx.requests.Add(request); err != nil {
		return nil, fmt.Errorf("RequestInformation: %w", err)
	}
	if err := tx.commit(); err != nil {
		return nil, fmt.Errorf("RequestInformation: %w", err)
	}
	logger.Infof("Request '%s' created: '%s' asks '%s' for field '%s'", request.ID, creator.ID, assigneeID, fieldName)
	return request, nil
}

// AcceptRequest fulfills a pending request by disclosing the requested field of
// informationID to the request's creator.
func (s *RegitSmartContract) AcceptRequest(ctx contractapi.TransactionContextInterface, requestID, informationID string) (*model.SharedInformation, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("AcceptRequest: %w", err)
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("AcceptRequest: %w", err)
	}
	if err := s.validateRequiredString(requestID, "requestID", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("AcceptRequest: %w", err)
	}
	if err := s.validateRequiredString(informationID, "informationID", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("AcceptRequest: %w", err)
	}

	request, err := tx.requests.Get(requestID)
	if err != nil {
		return nil, fmt.Errorf("AcceptRequest: %w", err)
	}
	if request.Assignee != caller.ID {
		return nil, fmt.Errorf("AcceptRequest: caller '%s' is not the assignee '%s' of request '%s': %w", caller.ID, request.Assignee, requestID, model.ErrUnauthorized)
	}
	if request.InformationID != "" && request.InformationID != informationID {
		return nil, fmt.Errorf("AcceptRequest: request '%s' targets information '%s', not '%s': %w", requestID, request.InformationID, informationID, model.ErrInvalidArgument)
	}
	asset, err := s.getOwnedInformation(tx, caller, informationID)
	if err != nil {
		return nil, fmt.Errorf("AcceptRequest: %w", err)
	}

	receipt, err := s.fulfillRequest(tx, request, asset)
	if err != nil {
		return nil, fmt.Errorf("AcceptRequest: %w", err)
	}
	if err := tx.commit(); err != nil {
		return nil, fmt.Errorf("AcceptRequest: %w", err)
	}
	return receipt, nil
}

// fulfillRequest marks request Done and appends a receipt holding a copy of the requested
// field. The receipt is keyed by the disclosure time. A request can be fulfilled once.
func (s *RegitSmartContract) fulfillRequest(tx *txScope, request *model.Request, source *model.InformationAsset) (*model.SharedInformation, error) {
	switch request.State {
	case model.RequestPending:
	case model.RequestDone:
		return nil, fmt.Errorf("request '%s': %w", request.ID, model.ErrAlreadyFulfilled)
	default:
		return nil, fmt.Errorf("request '%s' has unknown state '%s': %w", request.ID, request.State, model.ErrInvalidArgument)
	}
	value, err := source.Field(request.FieldName)
	if err != nil {
		return nil, err
	}

	request.State = model.RequestDone
	request.FulfilledAt = tx.now

	receipt := &model.SharedInformation{
		ObjectType:  sharedInformationObjectType,
		ID:          disclosureID(tx.now),
		Owner:       source.Owner,
		Viewer:      request.Creator,
		SharedValue: value,
		FieldName:   request.FieldName,
		SourceID:    request.ID,
		SharedAt:    tx.now,
	}
	if err := tx.shared.Add(receipt); err != nil {
		return nil, err
	}
	if err := tx.requests.Update(request); err != nil {
		return nil, err
	}
	logger.Infof("Request '%s' fulfilled: field '%s' of '%s' shared with '%s' (receipt '%s')", request.ID, request.FieldName, source.ID, request.Creator, receipt.ID)
	return receipt, nil
}
