package contract

import (
	"fmt"
	"strconv"

	"regit/ledger"
	"regit/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Functions ---

// GetMyMember returns the member record of the caller.
func (s *RegitSmartContract) GetMyMember(ctx contractapi.TransactionContextInterface) (*model.Member, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveCaller(ctx, tx)
}

// GetMember returns a member record. Only the member itself and members it authorized may
// read it.
func (s *RegitSmartContract) GetMember(ctx contractapi.TransactionContextInterface, memberID string) (*model.Member, error) {
	logger.Debugf("GetMember: Querying member '%s'", memberID)
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("GetMember: %w", err)
	}
	member, err := tx.getMember(memberID)
	if err != nil {
		return nil, fmt.Errorf("GetMember: %w", err)
	}
	if member.ID != caller.ID && !member.IsAuthorized(caller.ID) {
		return nil, fmt.Errorf("GetMember: caller '%s' is not authorized by '%s': %w", caller.ID, memberID, model.ErrUnauthorized)
	}
	return member, nil
}

// GetInformation returns a document to its owner, its viewer, or a member the owner authorized.
func (s *RegitSmartContract) GetInformation(ctx contractapi.TransactionContextInterface, informationID string) (*model.InformationAsset, error) {
	logger.Debugf("GetInformation: Querying information '%s'", informationID)
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("GetInformation: %w", err)
	}
	asset, err := tx.information.Get(informationID)
	if err != nil {
		return nil, fmt.Errorf("GetInformation: %w", err)
	}
	ok, err := s.canRead(tx, caller, asset)
	if err != nil {
		return nil, fmt.Errorf("GetInformation: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("GetInformation: caller '%s' may not read information '%s': %w", caller.ID, informationID, model.ErrUnauthorized)
	}
	return asset, nil
}

// GetRequest returns a request to its creator or assignee.
func (s *RegitSmartContract) GetRequest(ctx contractapi.TransactionContextInterface, requestID string) (*model.Request, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("GetRequest: %w", err)
	}
	request, err := tx.requests.Get(requestID)
	if err != nil {
		return nil, fmt.Errorf("GetRequest: %w", err)
	}
	if caller.ID != request.Creator && caller.ID != request.Assignee {
		return nil, fmt.Errorf("GetRequest: caller '%s' is not a party of request '%s': %w", caller.ID, requestID, model.ErrUnauthorized)
	}
	return request, nil
}

// GetMyPendingRequests lists, one page at a time, the pending requests the caller has to answer.
func (s *RegitSmartContract) GetMyPendingRequests(ctx contractapi.TransactionContextInterface, pageSizeStr string, bookmark string) (*model.RequestPage, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetMyPendingRequests: %w", err)
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("GetMyPendingRequests: %w", err)
	}
	pageSize := parsePageSize("GetMyPendingRequests", pageSizeStr)
	logger.Infof("GetMyPendingRequests: Getting pending requests for '%s' with pageSize: %d, bookmark: '%s'", caller.ID, pageSize, bookmark)

	q := ledger.NamedQuery[model.Request]{
		Name: "selectPendingRequestsByAssignee",
		Selector: ledger.Selector("indexObjectTypeAssigneeStateDoc", map[string]interface{}{
			"objectType": requestObjectType, "assignee": caller.ID, "state": model.RequestPending,
		}),
		Match: func(r *model.Request) bool { return r.Assignee == caller.ID && r.State == model.RequestPending },
	}
	requests, next, err := tx.requests.QueryPage(q, pageSize, bookmark)
	if err != nil {
		return nil, fmt.Errorf("GetMyPendingRequests: %w", err)
	}
	logger.Infof("GetMyPendingRequests: Found %d pending requests for '%s' on this page.", len(requests), caller.ID)
	return &model.RequestPage{Requests: requests, NextBookmark: next, FetchedCount: int32(len(requests))}, nil
}

// GetSharedInformation returns a receipt to its owner or viewer.
func (s *RegitSmartContract) GetSharedInformation(ctx contractapi.TransactionContextInterface, sharedID string) (*model.SharedInformation, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("GetSharedInformation: %w", err)
	}
	receipt, err := tx.shared.Get(sharedID)
	if err != nil {
		return nil, fmt.Errorf("GetSharedInformation: %w", err)
	}
	if caller.ID != receipt.Owner && caller.ID != receipt.Viewer {
		return nil, fmt.Errorf("GetSharedInformation: caller '%s' is not a party of receipt '%s': %w", caller.ID, sharedID, model.ErrUnauthorized)
	}
	return receipt, nil
}

// GetMySharedInformation lists, one page at a time, the receipts of values disclosed to the caller.
func (s *RegitSmartContract) GetMySharedInformation(ctx contractapi.TransactionContextInterface, pageSizeStr string, bookmark string) (*model.SharedInformationPage, error) {
	tx, err := s.newTxScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetMySharedInformation: %w", err)
	}
	caller, err := s.resolveCaller(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("GetMySharedInformation: %w", err)
	}
	pageSize := parsePageSize("GetMySharedInformation", pageSizeStr)
	logger.Infof("GetMySharedInformation: Getting receipts for '%s' with pageSize: %d, bookmark: '%s'", caller.ID, pageSize, bookmark)

	q := ledger.NamedQuery[model.SharedInformation]{
		Name: "selectSharedInformationByViewer",
		Selector: ledger.Selector("indexObjectTypeViewerDoc", map[string]interface{}{
			"objectType": sharedInformationObjectType, "viewer": caller.ID,
		}),
		Match: func(si *model.SharedInformation) bool { return si.Viewer == caller.ID },
	}
	receipts, next, err := tx.shared.QueryPage(q, pageSize, bookmark)
	if err != nil {
		return nil, fmt.Errorf("GetMySharedInformation: %w", err)
	}
	logger.Infof("GetMySharedInformation: Found %d receipts for '%s' on this page.", len(receipts), caller.ID)
	return &model.SharedInformationPage{Receipts: receipts, NextBookmark: next, FetchedCount: int32(len(receipts))}, nil
}

// parsePageSize reads a page size argument, defaulting to defaultPageSize and capping at maxPageSize.
func parsePageSize(op, pageSizeStr string) int32 {
	pageSize, err := strconv.ParseInt(pageSizeStr, 10, 32)
	if err != nil || pageSize <= 0 {
		logger.Warningf("%s: Invalid pageSize '%s', using default of %d. Error: %v", op, pageSizeStr, defaultPageSize, err)
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		logger.Warningf("%s: Requested pageSize %d exceeds max of %d. Capping at %d.", op, pageSize, maxPageSize, maxPageSize)
		return maxPageSize
	}
	return int32(pageSize)
}
