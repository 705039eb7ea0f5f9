package entity

import "time"

// ServiceOffering is a provider's request to deliver a specific paid service
// (guide, driver, hotel, ...). It becomes usable in packages once approved.
type ServiceOffering struct {
	ID              string       `json:"id" bson:"_id,omitempty"`
	ProviderID      string       `json:"provider" bson:"provider"`
	SpecificType    string       `json:"specificType" bson:"specificType"`
	Price           float64      `json:"price" bson:"price"`
	ServicesOffered []string     `json:"servicesOffered" bson:"servicesOffered"`
	Status          ReviewStatus `json:"status" bson:"status"`
	ApprovedBy      string       `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt" bson:"createdAt"`
}

// IsApproved reports whether the offering may be composed into packages
func (s *ServiceOffering) IsApproved() bool {
	return s.Status == StatusApproved
}
