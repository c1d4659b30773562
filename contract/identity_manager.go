package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"regit/ledger"
	"regit/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var idLogger = flogging.MustGetLogger("regit.identitymanager")

// Object types for composite keys owned by the identity manager.
const (
	identityBindingObjectType = "MemberIdentity" // Maps FullID to the member it acts as. Attribute: FullID.
	adminFlagObjectType       = "AdminFlag"      // Stores a flag for admin status. Attribute: member ID.
)

// IdentityManager maps certificate identities to members and handles admin privileges.
type IdentityManager struct {
	Ctx contractapi.TransactionContextInterface
}

// NewIdentityManager creates a new instance of IdentityManager.
func NewIdentityManager(ctx contractapi.TransactionContextInterface) *IdentityManager {
	return &IdentityManager{Ctx: ctx}
}

// --- Internal Helper Functions ---

func isValidX509ID(id string) bool {
	return strings.HasPrefix(id, "x509::") || strings.HasPrefix(id, "eDUwOTo6") // "eDUwOTo6" is "x509::" base64 encoded
}

func (im *IdentityManager) bindings() *ledger.Registry[model.IdentityBinding] {
	return ledger.NewRegistry(im.Ctx.GetStub(), identityBindingObjectType, func(b *model.IdentityBinding) string { return b.FullID })
}

func (im *IdentityManager) createAdminFlagCompositeKey(memberID string) (string, error) {
	return im.Ctx.GetStub().CreateCompositeKey(adminFlagObjectType, []string{memberID})
}

// --- Member Resolution ---

// GetCurrentIdentityFullID retrieves the full X.509 ID of the current transactor.
func (im *IdentityManager) GetCurrentIdentityFullID() (string, error) {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	if !isValidX509ID(id) {
		idLogger.Warningf("Current client ID '%s' does not appear to be a standard X.509 format.", id)
	}
	return id, nil
}

// ResolveCurrentMember returns the member the caller's certificate is bound to.
// Every failure to do so is reported as model.ErrUnresolvedPrincipal.
func (im *IdentityManager) ResolveCurrentMember(members *ledger.Registry[model.Member]) (*model.Member, error) {
	fullID, err := im.GetCurrentIdentityFullID()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrUnresolvedPrincipal)
	}
	binding, err := im.bindings().Get(fullID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("identity '%s': %w", fullID, model.ErrUnresolvedPrincipal)
		}
		return nil, err
	}
	member, err := members.Get(binding.MemberID)
	if err != nil {
		if isNotFound(err) {
			idLogger.Warningf("Identity '%s' is bound to missing member '%s'", fullID, binding.MemberID)
			return nil, fmt.Errorf("identity '%s' bound to unknown member '%s': %w", fullID, binding.MemberID, model.ErrUnresolvedPrincipal)
		}
		return nil, err
	}
	return member, nil
}

// BindCurrentIdentity records that the caller's certificate acts as memberID. An identity
// can be bound once.
func (im *IdentityManager) BindCurrentIdentity(memberID string, now time.Time) (*model.IdentityBinding, error) {
	fullID, err := im.GetCurrentIdentityFullID()
	if err != nil {
		return nil, err
	}
	existing, err := im.bindings().Get(fullID)
	if err == nil {
		return nil, fmt.Errorf("identity '%s' already acts as member '%s': %w", fullID, existing.MemberID, model.ErrDuplicateID)
	}
	if !isNotFound(err) {
		return nil, err
	}

	mspID := ""
	if mspValue, mspErr := im.Ctx.GetClientIdentity().GetMSPID(); mspErr != nil {
		idLogger.Warningf("Could not determine MSPID for identity %s: %v. Storing empty MSPID.", fullID, mspErr)
	} else {
		mspID = mspValue
	}

	binding := &model.IdentityBinding{
		ObjectType:      identityBindingObjectType,
		FullID:          fullID,
		MemberID:        memberID,
		OrganizationMSP: mspID,
		BoundAt:         now,
	}
	if err := im.bindings().Add(binding); err != nil {
		return nil, err
	}
	idLogger.Infof("Identity '%s' (MSP %s) bound to member '%s'", fullID, mspID, memberID)
	return binding, nil
}

// --- Admin Privileges ---

// IsAdmin checks the admin flag of a member.
func (im *IdentityManager) IsAdmin(memberID string) (bool, error) {
	key, err := im.createAdminFlagCompositeKey(memberID)
	if err != nil {
		return false, fmt.Errorf("failed to create admin flag key for '%s': %w", memberID, err)
	}
	flagBytes, err := im.Ctx.GetStub().GetState(key)
	if err != nil {
		return false, fmt.Errorf("ledger error checking admin flag for '%s': %w", memberID, err)
	}
	return flagBytes != nil && string(flagBytes) == "true", nil
}

// AnyAdminExists checks if any admin flag is set on the ledger.
func (im *IdentityManager) AnyAdminExists() (bool, error) {
	iterator, err := im.Ctx.GetStub().GetStateByPartialCompositeKey(adminFlagObjectType, []string{})
	if err != nil {
		return false, fmt.Errorf("failed to query admin records for AnyAdminExists: %w", err)
	}
	defer iterator.Close()
	return iterator.HasNext(), nil
}

// RequireAdmin fails with model.ErrUnauthorized unless the caller is an admin.
func (im *IdentityManager) RequireAdmin(caller *model.Member) error {
	isAdmin, err := im.IsAdmin(caller.ID)
	if err != nil {
		return fmt.Errorf("failed to check admin status: %w", err)
	}
	if !isAdmin {
		return fmt.Errorf("caller '%s' is not an admin: %w", caller.ID, model.ErrUnauthorized)
	}
	return nil
}

// MakeAdmin sets the admin flag of memberID. While no admin exists the caller bootstraps
// the first one; afterwards only admins may appoint others.
func (im *IdentityManager) MakeAdmin(members *ledger.Registry[model.Member], memberID string) error {
	caller, err := im.ResolveCurrentMember(members)
	if err != nil {
		return err
	}
	anyAdminExists, err := im.AnyAdminExists()
	if err != nil {
		return err
	}
	if anyAdminExists {
		if err := im.RequireAdmin(caller); err != nil {
			return err
		}
	} else {
		idLogger.Infof("No admins exist. Bootstrap: Caller '%s' is making '%s' an admin.", caller.ID, memberID)
	}

	if _, err := members.Get(memberID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("cannot make admin: member '%s': %w", memberID, model.ErrMemberNotFound)
		}
		return err
	}
	isAdmin, err := im.IsAdmin(memberID)
	if err != nil {
		return err
	}
	if isAdmin {
		idLogger.Infof("Member '%s' is already an admin. No action needed.", memberID)
		return nil
	}

	key, err := im.createAdminFlagCompositeKey(memberID)
	if err != nil {
		return fmt.Errorf("failed to create admin flag key for MakeAdmin: %w", err)
	}
	if err := im.Ctx.GetStub().PutState(key, []byte("true")); err != nil {
		return fmt.Errorf("failed to set admin flag for '%s': %v: %w", memberID, err, model.ErrPersistence)
	}
	idLogger.Infof("Member '%s' has been made an admin by '%s'.", memberID, caller.ID)
	return nil
}

// RemoveAdmin clears the admin flag of memberID. Admins cannot demote themselves.
func (im *IdentityManager) RemoveAdmin(members *ledger.Registry[model.Member], memberID string) error {
	caller, err := im.ResolveCurrentMember(members)
	if err != nil {
		return err
	}
	if err := im.RequireAdmin(caller); err != nil {
		return err
	}
	if caller.ID == memberID {
		return fmt.Errorf("admins cannot remove their own admin status: %w", model.ErrSelfReference)
	}

	key, err := im.createAdminFlagCompositeKey(memberID)
	if err != nil {
		return fmt.Errorf("failed to create admin flag key for RemoveAdmin: %w", err)
	}
	flagBytes, err := im.Ctx.GetStub().GetState(key)
	if err != nil {
		return fmt.Errorf("ledger error checking admin flag for '%s': %w", memberID, err)
	}
	if flagBytes == nil {
		idLogger.Infof("Member '%s' is not an admin. No action taken.", memberID)
		return nil
	}
	if err := im.Ctx.GetStub().DelState(key); err != nil {
		return fmt.Errorf("failed to delete admin flag for '%s': %v: %w", memberID, err, model.ErrPersistence)
	}
	idLogger.Infof("Admin privileges removed from member '%s' by '%s'.", memberID, caller.ID)
	return nil
}
