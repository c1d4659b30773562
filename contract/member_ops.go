package contract

import (
	"fmt"

	"regit/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Authorization Directory ---

// AuthorizeAccess grants memberID access to the caller's records.
func (s *RegitSmartContract) AuthorizeAccess(ctx contractapi.TransactionContextInterface, memberID string) error {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return fmt.Errorf("AuthorizeAccess: %w", err)
	}
	grantor, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return fmt.Errorf("AuthorizeAccess: %w", err)
	}
	if err := s.validateRequiredString(memberID, "memberID", maxStringInputLength); err != nil {
		return fmt.Errorf("AuthorizeAccess: %w", err)
	}
	if memberID == grantor.ID {
		return fmt.Errorf("AuthorizeAccess: member '%s' cannot authorize itself: %w", memberID, model.ErrSelfReference)
	}
	logger.Infof("AuthorizeAccess: '%s' granting access to '%s'", grantor.ID, memberID)

	if err := s.grantAccess(tx, grantor, memberID); err != nil {
		return fmt.Errorf("AuthorizeAccess: %w", err)
	}
	return tx.commit()
}

// RevokeAccess withdraws memberID's access to the caller's records.
func (s *RegitSmartContract) RevokeAccess(ctx contractapi.TransactionContextInterface, memberID string) error {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return fmt.Errorf("RevokeAccess: %w", err)
	}
	revoker, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return fmt.Errorf("RevokeAccess: %w", err)
	}
	if err := s.validateRequiredString(memberID, "memberID", maxStringInputLength); err != nil {
		return fmt.Errorf("RevokeAccess: %w", err)
	}
	logger.Infof("RevokeAccess: '%s' revoking access to '%s'", revoker.ID, memberID)

	if err := s.revokeAccess(tx, revoker, memberID); err != nil {
		return fmt.Errorf("RevokeAccess: %w", err)
	}
	return tx.commit()
}

// grantAccess adds granteeID to grantor's authorized set. Granting an id that is already
// present changes nothing and emits nothing.
func (s *RegitSmartContract) grantAccess(tx *txScope, grantor *model.Member, granteeID string) error {
	if grantor == nil {
		return model.ErrUnresolvedPrincipal
	}
	if grantor.IsAuthorized(granteeID) {
		logger.Infof("Member '%s' already authorized by '%s'. No action needed.", granteeID, grantor.ID)
		return nil
	}
	if _, err := tx.getMember(granteeID); err != nil {
		return err
	}

	grantor.Authorize(granteeID)
	tx.events.Emit(model.MemberEvent{MemberTransaction: s.memberTransaction(tx, model.TxAuthorizeAccess, grantor, granteeID)})
	if err := tx.members.Update(grantor); err != nil {
		return err
	}
	logger.Infof("Member '%s' authorized '%s'", grantor.ID, granteeID)
	return nil
}

// revokeAccess removes granteeID from revoker's authorized set. Revoking an id that is
// absent changes nothing and emits nothing.
func (s *RegitSmartContract) revokeAccess(tx *txScope, revoker *model.Member, granteeID string) error {
	if revoker == nil {
		return model.ErrUnresolvedPrincipal
	}
	if !revoker.Revoke(granteeID) {
		logger.Infof("Member '%s' not authorized by '%s'. No action taken for revocation.", granteeID, revoker.ID)
		return nil
	}

	tx.events.Emit(model.MemberEvent{MemberTransaction: s.memberTransaction(tx, model.TxRevokeAccess, revoker, granteeID)})
	if err := tx.members.Update(revoker); err != nil {
		return err
	}
	logger.Infof("Member '%s' revoked '%s'", revoker.ID, granteeID)
	return nil
}

func (s *RegitSmartContract) memberTransaction(tx *txScope, txType string, invoker *model.Member, memberID string) model.MemberTransaction {
	return model.MemberTransaction{
		Type:          txType,
		TransactionID: tx.txID,
		Invoker:       invoker.ID,
		MemberID:      memberID,
		Timestamp:     tx.now,
	}
}
