package entity

import "time"

type LeadTraveller struct {
	FirstName string     `json:"firstName" bson:"firstName"`
	LastName  string     `json:"lastName" bson:"lastName"`
	Email     string     `json:"email" bson:"email"`
	Phone     string     `json:"phone" bson:"phone"`
	DOB       *time.Time `json:"dob,omitempty" bson:"dob,omitempty"`
	Gender    string     `json:"gender,omitempty" bson:"gender,omitempty"`
}

type TravellerCounts struct {
	NoOfAdult  int `json:"noOfAdult" bson:"noOfAdult"`
	NoOfChild1 int `json:"noOfChild1" bson:"noOfChild1"`
	NoOfChild2 int `json:"noOfChild2" bson:"noOfChild2"`
	NoOfInfant int `json:"noOfInfant" bson:"noOfInfant"`
}

// Total is the number of travellers of every age group
func (c TravellerCounts) Total() int {
	return c.NoOfAdult + c.NoOfChild1 + c.NoOfChild2 + c.NoOfInfant
}

// SelectedService is the plan a customer picked for one service type
type SelectedService struct {
	ServiceType string       `json:"serviceType" bson:"serviceType"`
	ServicePlan []DayService `json:"servicePlan" bson:"servicePlan"`
}

// Booking is a customer's purchase of a package. At most one exists per
// (TouristID, PackageID).
type Booking struct {
	ID               string            `json:"id" bson:"_id,omitempty"`
	TouristID        string            `json:"tourist" bson:"tourist"`
	PackageID        string            `json:"package" bson:"package"`
	Price            float64           `json:"price" bson:"price"`
	StartDate        time.Time         `json:"startDate" bson:"startDate"`
	LeadTraveller    LeadTraveller     `json:"leadTraveller" bson:"leadTraveller"`
	NoOfTravellers   TravellerCounts   `json:"noOfTravellers" bson:"noOfTravellers"`
	ServicesSelected []SelectedService `json:"servicesSelected" bson:"servicesSelected"`
	Vehicle          string            `json:"vehicle" bson:"vehicle"`
	CreatedAt        time.Time         `json:"createdAt" bson:"createdAt"`
}
