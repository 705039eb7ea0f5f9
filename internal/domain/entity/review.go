package entity

import (
	"fmt"

	"safarsathi-service/pkg/apperror"
)

// ReviewStatus is the state of anything an employee approves or rejects
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusAccepted ReviewStatus = "accepted"
	StatusRejected ReviewStatus = "rejected"
)

// ReviewFlow is a transition table for one reviewed subject. States with no
// outgoing transitions are terminal.
type ReviewFlow struct {
	subject     string
	initial     ReviewStatus
	transitions map[ReviewStatus][]ReviewStatus
}

var (
	// OfferingReview governs service offering requests
	OfferingReview = ReviewFlow{
		subject: "service offering",
		initial: StatusPending,
		transitions: map[ReviewStatus][]ReviewStatus{
			StatusPending:  {StatusApproved, StatusRejected},
			StatusApproved: nil,
			StatusRejected: nil,
		},
	}

	// LocationRequestReview governs customer-submitted location requests
	LocationRequestReview = ReviewFlow{
		subject: "location request",
		initial: StatusPending,
		transitions: map[ReviewStatus][]ReviewStatus{
			StatusPending:  {StatusAccepted, StatusRejected},
			StatusAccepted: nil,
			StatusRejected: nil,
		},
	}
)

// Initial returns the state new subjects start in
func (f ReviewFlow) Initial() ReviewStatus {
	return f.initial
}

// Known reports whether s is a state of this flow
func (f ReviewFlow) Known(s ReviewStatus) bool {
	_, ok := f.transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s
func (f ReviewFlow) IsTerminal(s ReviewStatus) bool {
	return f.Known(s) && len(f.transitions[s]) == 0
}

// Outcomes lists the states reachable from the initial state
func (f ReviewFlow) Outcomes() []ReviewStatus {
	return f.transitions[f.initial]
}

// CanTransition reports whether from -> to is in the table
func (f ReviewFlow) CanTransition(from, to ReviewStatus) bool {
	for _, next := range f.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to and returns an InvalidTransition error
// when the table does not allow it.
func (f ReviewFlow) Transition(from, to ReviewStatus) error {
	if f.CanTransition(from, to) {
		return nil
	}
	if f.IsTerminal(from) {
		return apperror.ErrInvalidTransition.WithMessage(
			fmt.Sprintf("The %s has already been %s.", f.subject, from))
	}
	return apperror.ErrInvalidTransition.WithMessage(
		fmt.Sprintf("Invalid status provided. A %s can move from '%s' to %s.", f.subject, from, f.describe(from)))
}

func (f ReviewFlow) describe(from ReviewStatus) string {
	next := f.transitions[from]
	out := ""
	for i, s := range next {
		if i > 0 {
			out += " or "
		}
		out += "'" + string(s) + "'"
	}
	return out
}
