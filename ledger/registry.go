// Package ledger adapts the Fabric world state to typed registries, named queries and
// a transaction-scoped event buffer.
package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"regit/model"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("regit.ledger")

// Registry stores records of one object type under single-attribute composite keys.
type Registry[T any] struct {
	stub       shim.ChaincodeStubInterface
	objectType string
	idOf       func(*T) string
}

// NewRegistry returns a registry for objectType. idOf extracts the record identifier.
func NewRegistry[T any](stub shim.ChaincodeStubInterface, objectType string, idOf func(*T) string) *Registry[T] {
	return &Registry[T]{stub: stub, objectType: objectType, idOf: idOf}
}

func (r *Registry[T]) key(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s id cannot be empty: %w", r.objectType, model.ErrInvalidArgument)
	}
	return r.stub.CreateCompositeKey(r.objectType, []string{id})
}

// Get reads and decodes the record stored under id. A missing record yields model.ErrNotFound.
func (r *Registry[T]) Get(id string) (*T, error) {
	key, err := r.key(id)
	if err != nil {
		return nil, err
	}
	raw, err := r.stub.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s '%s' from ledger: %w", r.objectType, id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s '%s': %w", r.objectType, id, model.ErrNotFound)
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s '%s': %w", r.objectType, id, err)
	}
	return &rec, nil
}

// Exists reports whether a record is stored under id.
func (r *Registry[T]) Exists(id string) (bool, error) {
	key, err := r.key(id)
	if err != nil {
		return false, err
	}
	raw, err := r.stub.GetState(key)
	if err != nil {
		return false, fmt.Errorf("failed to check %s '%s' on ledger: %w", r.objectType, id, err)
	}
	return raw != nil, nil
}

// Add stores a new record. An existing record under the same id is never overwritten;
// the call fails with model.ErrDuplicateID instead.
func (r *Registry[T]) Add(rec *T) error {
	id := r.idOf(rec)
	exists, err := r.Exists(id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s '%s' already exists: %w", r.objectType, id, model.ErrDuplicateID)
	}
	return r.put(id, rec)
}

// Update replaces an existing record. A missing record yields model.ErrNotFound.
func (r *Registry[T]) Update(rec *T) error {
	id := r.idOf(rec)
	exists, err := r.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("cannot update %s '%s': %w", r.objectType, id, model.ErrNotFound)
	}
	return r.put(id, rec)
}

// Remove deletes the record stored under id. Removing an absent record is a no-op
// and reports false.
func (r *Registry[T]) Remove(id string) (bool, error) {
	key, err := r.key(id)
	if err != nil {
		return false, err
	}
	raw, err := r.stub.GetState(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s '%s' before removal: %w", r.objectType, id, err)
	}
	if raw == nil {
		logger.Debugf("%s '%s' already absent, nothing to remove", r.objectType, id)
		return false, nil
	}
	if err := r.stub.DelState(key); err != nil {
		return false, fmt.Errorf("failed to remove %s '%s': %v: %w", r.objectType, id, err, model.ErrPersistence)
	}
	return true, nil
}

// All returns every record of the registry's object type.
func (r *Registry[T]) All() ([]*T, error) {
	iter, err := r.stub.GetStateByPartialCompositeKey(r.objectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s records: %w", r.objectType, err)
	}
	defer iter.Close()
	return r.collect(iter, nil)
}

func (r *Registry[T]) put(id string, rec *T) error {
	key, err := r.key(id)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s '%s': %w", r.objectType, id, err)
	}
	if err := r.stub.PutState(key, raw); err != nil {
		return fmt.Errorf("failed to save %s '%s' to ledger: %v: %w", r.objectType, id, err, model.ErrPersistence)
	}
	return nil
}

// collect drains iter, decoding every value and keeping those accepted by match.
// A nil match keeps everything.
func (r *Registry[T]) collect(iter shim.StateQueryIteratorInterface, match func(*T) bool) ([]*T, error) {
	out := []*T{}
	for iter.HasNext() {
		kv, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s records: %w", r.objectType, err)
		}
		var rec T
		if err := json.Unmarshal(kv.Value, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s record '%s': %w", r.objectType, kv.Key, err)
		}
		if match == nil || match(&rec) {
			out = append(out, &rec)
		}
	}
	return out, nil
}
