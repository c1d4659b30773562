package contract

import (
	"fmt"

	"regit/ledger"
	"regit/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Retention Sweeper ---

const highQuantityQueryName = "selectInformationsWithHighQuantity"

// highQuantityQuery selects information assets whose quantity exceeds threshold.
func highQuantityQuery(threshold int) ledger.NamedQuery[model.InformationAsset] {
	return ledger.NamedQuery[model.InformationAsset]{
		Name: highQuantityQueryName,
		Selector: ledger.Selector("indexObjectTypeQuantityDoc", map[string]interface{}{
			"objectType": informationObjectType, "quantity": map[string]int{"$gt": threshold},
		}),
		Match: func(a *model.InformationAsset) bool { return a.Quantity > threshold },
	}
}

// RemoveHighQuantityInformations removes every information asset above the retention
// threshold and returns how many were removed. Admin only.
func (s *RegitSmartContract) RemoveHighQuantityInformations(ctx contractapi.TransactionContextInterface) (int, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return 0, fmt.Errorf("RemoveHighQuantityInformations: %w", err)
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("RemoveHighQuantityInformations: %w", err)
	}
	if err := NewIdentityManager(ctx).RequireAdmin(caller); err != nil {
		return 0, fmt.Errorf("RemoveHighQuantityInformations: %w", err)
	}

	removed, err := s.pruneHighQuantityInformation(tx)
	if err != nil {
		return 0, fmt.Errorf("RemoveHighQuantityInformations: %w", err)
	}
	if err := tx.commit(); err != nil {
		return 0, fmt.Errorf("RemoveHighQuantityInformations: %w", err)
	}
	return removed, nil
}

// pruneHighQuantityInformation emits one RemoveNotification per matching asset and then
// removes them all. Any failed removal aborts the sweep; rerunning it is safe.
func (s *RegitSmartContract) pruneHighQuantityInformation(tx *txScope) (int, error) {
	threshold, err := s.quantityThreshold(tx)
	if err != nil {
		return 0, err
	}
	matches, err := tx.information.Query(highQuantityQuery(threshold))
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		logger.Infof("Retention sweep: no information above quantity %d", threshold)
		return 0, nil
	}

	for _, asset := range matches {
		tx.events.Emit(model.RemoveNotification{Information: asset.Ref()})
	}

	removed := 0
	for _, asset := range matches {
		ok, err := tx.information.Remove(asset.ID)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	logger.Infof("Retention sweep: removed %d of %d information assets above quantity %d", removed, len(matches), threshold)
	return removed, nil
}

// quantityThreshold returns the stored threshold or the default when no policy exists.
func (s *RegitSmartContract) quantityThreshold(tx *txScope) (int, error) {
	policy, err := tx.policies.Get(retentionPolicyID)
	if err != nil {
		if isNotFound(err) {
			return defaultQuantityThreshold, nil
		}
		return 0, err
	}
	return policy.QuantityThreshold, nil
}

// SetRetentionThreshold changes the quantity above which assets are swept. Admin only.
func (s *RegitSmartContract) SetRetentionThreshold(ctx contractapi.TransactionContextInterface, threshold int) error {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return fmt.Errorf("SetRetentionThreshold: %w", err)
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return fmt.Errorf("SetRetentionThreshold: %w", err)
	}
	if err := NewIdentityManager(ctx).RequireAdmin(caller); err != nil {
		return fmt.Errorf("SetRetentionThreshold: %w", err)
	}
	if threshold < 0 {
		return fmt.Errorf("SetRetentionThreshold: threshold cannot be negative: %w", model.ErrInvalidArgument)
	}

	policy := &model.RetentionPolicy{
		ObjectType:        retentionPolicyObjectType,
		QuantityThreshold: threshold,
		UpdatedBy:         caller.ID,
		UpdatedAt:         tx.now,
	}
	exists, err := tx.policies.Exists(retentionPolicyID)
	if err != nil {
		return fmt.Errorf("SetRetentionThreshold: %w", err)
	}
	if exists {
		err = tx.policies.Update(policy)
	} else {
		err = tx.policies.Add(policy)
	}
	if err != nil {
		return fmt.Errorf("SetRetentionThreshold: %w", err)
	}
	logger.Infof("Retention threshold set to %d by '%s'", threshold, caller.ID)
	return nil
}

// GetRetentionThreshold returns the quantity above which assets are swept.
func (s *RegitSmartContract) GetRetentionThreshold(ctx contractapi.TransactionContextInterface) (int, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return 0, err
	}
	return s.quantityThreshold(tx)
}
