package entity

import "time"

type PackageType string

const (
	PackageMajor PackageType = "Major"
	PackageMini  PackageType = "Mini"
)

// DayService binds one day of an itinerary to a service offering
type DayService struct {
	Day           string `json:"day" bson:"day"`
	ActualService string `json:"actualService" bson:"actualService"`
}

// OfferedService groups the alternative plans a package offers for one
// service type. Each plan is a day-by-day list of offerings.
type OfferedService struct {
	ServiceType  string         `json:"serviceType" bson:"serviceType"`
	ServicePlan  [][]DayService `json:"servicePlan" bson:"servicePlan"`
	ExtraService []DayService   `json:"extraService,omitempty" bson:"extraService,omitempty"`
}

type ScheduleDay struct {
	Day         string   `json:"day" bson:"day"`
	Description []string `json:"description" bson:"description"`
}

// Package is a sellable itinerary. StartDates[i] pairs with EndDates[i].
type Package struct {
	ID              string           `json:"id" bson:"_id,omitempty"`
	PackageImg      string           `json:"packageImg" bson:"packageImg"`
	Name            string           `json:"name" bson:"name"`
	StartDates      []time.Time      `json:"startDates" bson:"startDates"`
	EndDates        []time.Time      `json:"endDates" bson:"endDates"`
	Type            PackageType      `json:"type" bson:"type"`
	Price           float64          `json:"price" bson:"price"`
	Locations       []string         `json:"location" bson:"location"`
	Schedule        []ScheduleDay    `json:"schedule" bson:"schedule"`
	ServicesOffered []OfferedService `json:"servicesOffered" bson:"servicesOffered"`
	Vehicles        []string         `json:"vehicles,omitempty" bson:"vehicles,omitempty"`
	CreatedBy       string           `json:"createdBy" bson:"createdBy"`
	CreatedAt       time.Time        `json:"createdAt" bson:"createdAt"`
}

// Window returns the first start date and the last end date
func (p *Package) Window() (time.Time, time.Time) {
	if len(p.StartDates) == 0 || len(p.EndDates) == 0 {
		return time.Time{}, time.Time{}
	}
	return p.StartDates[0], p.EndDates[len(p.EndDates)-1]
}

// Overlaps reports whether p collides with the window [start, end): one of
// its dates falls inside the window, or it spans the whole window.
func (p *Package) Overlaps(start, end time.Time) bool {
	inWindow := func(d time.Time) bool {
		return !d.Before(start) && d.Before(end)
	}
	for _, d := range p.StartDates {
		if inWindow(d) {
			return true
		}
	}
	for _, d := range p.EndDates {
		if inWindow(d) {
			return true
		}
	}

	startsBefore := false
	for _, d := range p.StartDates {
		if !d.After(start) {
			startsBefore = true
			break
		}
	}
	if !startsBefore {
		return false
	}
	for _, d := range p.EndDates {
		if !d.Before(end) {
			return true
		}
	}
	return false
}

// Offers reports whether the package offers ds under serviceType, in any of
// its plans or as an extra service.
func (p *Package) Offers(serviceType string, ds DayService) bool {
	for _, svc := range p.ServicesOffered {
		if svc.ServiceType != serviceType {
			continue
		}
		for _, plan := range svc.ServicePlan {
			for _, entry := range plan {
				if entry == ds {
					return true
				}
			}
		}
		for _, entry := range svc.ExtraService {
			if entry == ds {
				return true
			}
		}
	}
	return false
}

// ServiceRefs returns the distinct offering IDs referenced by the package
func (p *Package) ServiceRefs() []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			refs = append(refs, id)
		}
	}
	for _, svc := range p.ServicesOffered {
		for _, plan := range svc.ServicePlan {
			for _, entry := range plan {
				add(entry.ActualService)
			}
		}
		for _, entry := range svc.ExtraService {
			add(entry.ActualService)
		}
	}
	return refs
}
