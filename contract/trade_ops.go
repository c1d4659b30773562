package contract

import (
	"fmt"

	"regit/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Trade Workflow ---

// TradeInformation hands the viewing right of a document owned by the caller to newViewer
// and records the disclosure of fieldName.
func (s *RegitSmartContract) TradeInformation(ctx contractapi.TransactionContextInterface, informationID, newViewer, fieldName string) (*model.SharedInformation, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("TradeInformation: %w", err)
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("TradeInformation: %w", err)
	}
	if err := s.validateRequiredString(newViewer, "newViewer", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("TradeInformation: %w", err)
	}
	if err := s.validateRequiredString(fieldName, "fieldName", maxStringInputLength); err != nil {
		return nil, fmt.Errorf("TradeInformation: %w", err)
	}

	asset, err := s.getOwnedInformation(tx, caller, informationID)
	if err != nil {
		return nil, fmt.Errorf("TradeInformation: %w", err)
	}
	if _, err := tx.getMember(newViewer); err != nil {
		return nil, fmt.Errorf("TradeInformation: %w", err)
	}

	receipt, err := s.tradeInformation(tx, asset, newViewer, fieldName)
	if err != nil {
		return nil, fmt.Errorf("TradeInformation: %w", err)
	}
	if err := tx.commit(); err != nil {
		return nil, fmt.Errorf("TradeInformation: %w", err)
	}
	return receipt, nil
}

// tradeInformation reassigns the asset's viewer and appends a receipt keyed by the asset id.
// Since receipts are never overwritten, an asset can be traded once.
func (s *RegitSmartContract) tradeInformation(tx *txScope, asset *model.InformationAsset, newViewer, fieldName string) (*model.SharedInformation, error) {
	value, err := asset.Field(fieldName)
	if err != nil {
		return nil, err
	}

	previousViewer := asset.Viewer
	asset.Viewer = newViewer
	asset.LastUpdatedAt = tx.now

	tx.events.Emit(model.TradeNotification{Information: asset.Ref()})

	receipt := &model.SharedInformation{
		ObjectType:  sharedInformationObjectType,
		ID:          asset.ID,
		Owner:       asset.Owner,
		Viewer:      asset.Viewer,
		SharedValue: value,
		FieldName:   fieldName,
		SourceID:    asset.ID,
		SharedAt:    tx.now,
	}
	if err := tx.shared.Add(receipt); err != nil {
		return nil, err
	}
	if err := tx.information.Update(asset); err != nil {
		return nil, err
	}
	logger.Infof("Information '%s' traded: viewer '%s' -> '%s', field '%s' shared", asset.ID, previousViewer, newViewer, fieldName)
	return receipt, nil
}
