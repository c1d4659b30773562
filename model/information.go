package model

import (
	"fmt"
	"sort"
	"time"
)

// InformationType labels the kind of document an asset holds. It is informational only.
type InformationType string

const (
	InfoTypeBasic     InformationType = "BASIC"
	InfoTypeFinancial InformationType = "FINANCIAL"
	InfoTypeEducation InformationType = "EDUCATION"
	InfoTypePassport  InformationType = "PASSPORT"
)

// ValidInformationTypes lists the accepted information type labels.
var ValidInformationTypes = map[InformationType]bool{
	InfoTypeBasic:     true,
	InfoTypeFinancial: true,
	InfoTypeEducation: true,
	InfoTypePassport:  true,
}

// InformationAsset is a document owned by a member with named disclosable fields.
type InformationAsset struct {
	ObjectType    string            `json:"objectType"`    // Set to the composite key object type (InformationAsset)
	ID            string            `json:"id"`            // Unique asset identifier
	InfoType      InformationType   `json:"infoType"`      // BASIC, FINANCIAL, EDUCATION or PASSPORT
	Owner         string            `json:"owner"`         // Member ID of the owner
	Viewer        string            `json:"viewer"`        // Member ID of the currently authorized reader
	Quantity      int               `json:"quantity"`      // Volume indicator used by the retention sweep
	Fields        map[string]string `json:"fields"`        // Disclosable values keyed by field name
	CreatedAt     time.Time         `json:"createdAt"`     // Timestamp of creation
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"` // Timestamp of last update
}

// Field returns the value of the named field or ErrInvalidFieldReference.
func (a *InformationAsset) Field(name string) (string, error) {
	v, ok := a.Fields[name]
	if !ok {
		return "", fmt.Errorf("field '%s' on information '%s' (has %v): %w", name, a.ID, a.FieldNames(), ErrInvalidFieldReference)
	}
	return v, nil
}

// Ref returns the identifying summary of the asset, without its field values.
func (a *InformationAsset) Ref() InformationRef {
	return InformationRef{
		ID:       a.ID,
		InfoType: a.InfoType,
		Owner:    a.Owner,
		Viewer:   a.Viewer,
		Quantity: a.Quantity,
	}
}

// FieldNames returns the asset's field names in sorted order.
func (a *InformationAsset) FieldNames() []string {
	names := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// InformationRef identifies an asset in notifications. It never carries field values.
type InformationRef struct {
	ID       string          `json:"id"`
	InfoType InformationType `json:"infoType"`
	Owner    string          `json:"owner"`
	Viewer   string          `json:"viewer"`
	Quantity int             `json:"quantity"`
}

// RequestState is the lifecycle state of a disclosure request.
type RequestState string

const (
	RequestPending RequestState = "Pending"
	RequestDone    RequestState = "Done"
)

// Request asks the assignee to disclose one named field to the creator.
type Request struct {
	ObjectType    string       `json:"objectType"`    // Set to the composite key object type (Request)
	ID            string       `json:"id"`            // Unique request identifier
	Creator       string       `json:"creator"`       // Member ID asking for the field
	Assignee      string       `json:"assignee"`      // Member ID who must fulfill the request
	InformationID string       `json:"informationId"` // Asset the field is asked from, empty if unspecified
	FieldName     string       `json:"fieldName"`     // Requested field
	State         RequestState `json:"state"`         // Pending or Done
	CreatedAt     time.Time    `json:"createdAt"`
	FulfilledAt   time.Time    `json:"fulfilledAt"`
}

// SharedInformation is the immutable receipt of a single disclosure.
type SharedInformation struct {
	ObjectType  string    `json:"objectType"`  // Set to the composite key object type (SharedInformation)
	ID          string    `json:"id"`          // Disclosure time for request receipts, asset ID for trade receipts
	Owner       string    `json:"owner"`       // Member ID who owns the disclosed value
	Viewer      string    `json:"viewer"`      // Member ID the value was disclosed to
	SharedValue string    `json:"sharedValue"` // Copy of the field value at disclosure time
	FieldName   string    `json:"fieldName"`
	SourceID    string    `json:"sourceId"` // Request ID or asset ID the receipt originates from
	SharedAt    time.Time `json:"sharedAt"`
}

// RequestPage is one page of requests with the bookmark of the next page.
type RequestPage struct {
	Requests     []*Request `json:"requests"`
	NextBookmark string     `json:"nextBookmark"`
	FetchedCount int32      `json:"fetchedCount"`
}

// SharedInformationPage is one page of receipts with the bookmark of the next page.
type SharedInformationPage struct {
	Receipts     []*SharedInformation `json:"receipts"`
	NextBookmark string               `json:"nextBookmark"`
	FetchedCount int32                `json:"fetchedCount"`
}

// RetentionPolicy holds the ledger-wide threshold used by the high quantity sweep.
type RetentionPolicy struct {
	ObjectType        string    `json:"objectType"`
	QuantityThreshold int       `json:"quantityThreshold"` // Assets with quantity strictly above are swept
	UpdatedBy         string    `json:"updatedBy"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
