package ledger

import (
	"encoding/json"
	"fmt"

	"regit/model"
)

// NamedQuery is a predicate over one registry's records. Selector is the CouchDB rich
// query; Match is the same predicate evaluated in chaincode and is used to filter the
// composite key scan when the state database cannot run rich queries.
type NamedQuery[T any] struct {
	Name     string
	Selector string
	Match    func(*T) bool
}

// Query runs q and returns the matching records. The returned slice is produced fresh
// for every invocation.
func (r *Registry[T]) Query(q NamedQuery[T]) ([]*T, error) {
	if q.Match == nil {
		return nil, fmt.Errorf("query '%s' has no predicate", q.Name)
	}
	if q.Selector != "" {
		iter, err := r.stub.GetQueryResult(q.Selector)
		if err == nil {
			defer iter.Close()
			recs, err := r.collect(iter, q.Match)
			if err != nil {
				return nil, fmt.Errorf("query '%s': %w", q.Name, err)
			}
			logger.Debugf("Query '%s' matched %d %s records via rich query", q.Name, len(recs), r.objectType)
			return recs, nil
		}
		logger.Warningf("Query '%s': rich query failed: %v. Falling back to full scan (SLOW).", q.Name, err)
	}

	iter, err := r.stub.GetStateByPartialCompositeKey(r.objectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("query '%s': failed to scan %s records: %w", q.Name, r.objectType, err)
	}
	defer iter.Close()
	recs, err := r.collect(iter, q.Match)
	if err != nil {
		return nil, fmt.Errorf("query '%s': %w", q.Name, err)
	}
	logger.Debugf("Query '%s' matched %d %s records via scan", q.Name, len(recs), r.objectType)
	return recs, nil
}

// QueryPage runs q one page at a time and returns the bookmark of the next page, empty
// when no further page exists. When the state database cannot run the paginated rich
// query, the composite-key scan is paged in chaincode and the bookmark is the last key
// returned.
func (r *Registry[T]) QueryPage(q NamedQuery[T], pageSize int32, bookmark string) ([]*T, string, error) {
	if q.Match == nil {
		return nil, "", fmt.Errorf("query '%s' has no predicate", q.Name)
	}
	if pageSize <= 0 {
		return nil, "", fmt.Errorf("query '%s': page size must be positive: %w", q.Name, model.ErrInvalidArgument)
	}
	if q.Selector != "" {
		iter, metadata, err := r.stub.GetQueryResultWithPagination(q.Selector, pageSize, bookmark)
		if err == nil && iter != nil {
			defer iter.Close()
			recs, err := r.collect(iter, q.Match)
			if err != nil {
				return nil, "", fmt.Errorf("query '%s': %w", q.Name, err)
			}
			next := metadata.GetBookmark()
			if int32(len(recs)) < pageSize {
				next = ""
			}
			logger.Debugf("Query '%s' matched %d %s records on this page via rich query", q.Name, len(recs), r.objectType)
			return recs, next, nil
		}
		logger.Warningf("Query '%s': paginated rich query failed: %v. Falling back to full scan (SLOW).", q.Name, err)
	}

	iter, err := r.stub.GetStateByPartialCompositeKey(r.objectType, []string{})
	if err != nil {
		return nil, "", fmt.Errorf("query '%s': failed to scan %s records: %w", q.Name, r.objectType, err)
	}
	defer iter.Close()

	recs := []*T{}
	lastKey, next := "", ""
	for iter.HasNext() {
		kv, err := iter.Next()
		if err != nil {
			return nil, "", fmt.Errorf("query '%s': failed to iterate %s records: %w", q.Name, r.objectType, err)
		}
		if bookmark != "" && kv.Key <= bookmark {
			continue
		}
		var rec T
		if err := json.Unmarshal(kv.Value, &rec); err != nil {
			return nil, "", fmt.Errorf("query '%s': failed to unmarshal %s record '%s': %w", q.Name, r.objectType, kv.Key, err)
		}
		if !q.Match(&rec) {
			continue
		}
		if int32(len(recs)) == pageSize {
			next = lastKey
			break
		}
		recs = append(recs, &rec)
		lastKey = kv.Key
	}
	logger.Debugf("Query '%s' matched %d %s records on this page via scan", q.Name, len(recs), r.objectType)
	return recs, next, nil
}

// Selector renders a CouchDB rich query matching fields, hinting the given design document
// index when index is not empty.
func Selector(index string, fields map[string]interface{}) string {
	q := map[string]interface{}{"selector": fields}
	if index != "" {
		q["use_index"] = "_design/" + index
	}
	raw, err := json.Marshal(q)
	if err != nil {
		logger.Errorf("Selector: failed to marshal rich query: %v", err)
		return ""
	}
	return string(raw)
}
