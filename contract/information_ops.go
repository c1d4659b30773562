package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"regit/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Information Assets ---

// CreateInformation stores a new document owned by the caller. The caller is also its
// initial viewer.
func (s *RegitSmartContract) CreateInformation(ctx contractapi.TransactionContextInterface,
	informationID string, infoType string, quantity int, fieldsJSON string) (*model.InformationAsset, error) {

	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("CreateInformation: %w", err)
	}
	owner, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("CreateInformation: %w", err)
	}

	if err := s.validateRequiredString(informationID, "informationID", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("CreateInformation: %w", err)
	}
	typ := model.InformationType(strings.ToUpper(strings.TrimSpace(infoType)))
	if !model.ValidInformationTypes[typ] {
		return nil, fmt.Errorf("CreateInformation: invalid infoType '%s'. Valid types: BASIC, FINANCIAL, EDUCATION, PASSPORT: %w", infoType, model.ErrInvalidArgument)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("CreateInformation: quantity cannot be negative: %w", model.ErrInvalidArgument)
	}
	var fields map[string]string
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, fmt.Errorf("CreateInformation: invalid fieldsJSON: %v: %w", err, model.ErrInvalidArgument)
	}
	if err := s.validateFields(fields); err != nil {
		return nil, fmt.Errorf("CreateInformation: %w", err)
	}

	asset := &model.InformationAsset{
		ObjectType:    informationObjectType,
		ID:            informationID,
		InfoType:      typ,
		Owner:         owner.ID,
		Viewer:        owner.ID,
		Quantity:      quantity,
		Fields:        fields,
		CreatedAt:     tx.now,
		LastUpdatedAt: tx.now,
	}
	if err := tx.information.Add(asset); err != nil {
		return nil, fmt.Errorf("CreateInformation: %w", err)
	}
	logger.Infof("Information '%s' (%s, %d fields) created by '%s'", informationID, typ, len(fields), owner.ID)
	return asset, nil
}

// UpdateInformationField sets one field of a document owned by the caller. Receipts created
// earlier keep the value they copied.
func (s *RegitSmartContract) UpdateInformationField(ctx contractapi.TransactionContextInterface, informationID, fieldName, value string) error {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return fmt.Errorf("UpdateInformationField: %w", err)
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return fmt.Errorf("UpdateInformationField: %w", err)
	}
	if err := s.validateRequiredString(fieldName, "fieldName", maxStringInputLength); err != nil {
		return fmt.Errorf("UpdateInformationField: %w", err)
	}
	if err := s.validateOptionalString(value, "value", maxFieldValueLength); err != nil {
		return fmt.Errorf("UpdateInformationField: %w", err)
	}

	asset, err := s.getOwnedInformation(tx, caller, informationID)
	if err != nil {
		return fmt.Errorf("UpdateInformationField: %w", err)
	}
	if _, exists := asset.Fields[fieldName]; !exists && len(asset.Fields) >= maxInformationFields {
		return fmt.Errorf("UpdateInformationField: information '%s' already holds %d fields: %w", informationID, maxInformationFields, model.ErrInvalidArgument)
	}
	if asset.Fields == nil {
		asset.Fields = map[string]string{}
	}
	asset.Fields[fieldName] = value
	asset.LastUpdatedAt = tx.now
	if err := tx.information.Update(asset); err != nil {
		return fmt.Errorf("UpdateInformationField: %w", err)
	}
	logger.Infof("Field '%s' of information '%s' updated by '%s'", fieldName, informationID, caller.ID)
	return nil
}

// getOwnedInformation loads a document and checks that caller owns it.
func (s *RegitSmartContract) getOwnedInformation(tx *txScope, caller *model.Member, informationID string) (*model.InformationAsset, error) {
	asset, err := tx.information.Get(informationID)
	if err != nil {
		return nil, err
	}
	if asset.Owner != caller.ID {
		return nil, fmt.Errorf("caller '%s' does not own information '%s': %w", caller.ID, informationID, model.ErrUnauthorized)
	}
	return asset, nil
}

// canRead reports whether caller may read asset: its owner, its viewer, or a member the
// owner has authorized.
func (s *RegitSmartContract) canRead(tx *txScope, caller *model.Member, asset *model.InformationAsset) (bool, error) {
	if caller.ID == asset.Owner || caller.ID == asset.Viewer {
		return true, nil
	}
	owner, err := tx.getMember(asset.Owner)
	if err != nil {
		if errors.Is(err, model.ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return owner.IsAuthorized(caller.ID), nil
}
