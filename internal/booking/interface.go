package booking

// BookingStore keeps each court's timeline of reservations free of
// overlapping intervals within a scope. Confirmed scheduled matches count
// as opaque busy intervals for the free/busy query even though they live
// in their own collection.
type BookingStore interface {
	// IsFree reports whether the court has no conflicting reservation (or
	// scheduled match, for date scopes) in [from,to), and is itself marked
	// available. The date pass and the weekday pass run separately.
	IsFree(courtID string, scope Scope, from, to string) (bool, error)

	// Upsert inserts a reservation, trimming anything it overlaps within
	// the same scope so the timeline stays overlap-free.
	Upsert(reservation Reservation) (Reservation, error)

	// DeleteRange removes [from,to) from the court's timeline in the given
	// scope, keeping residual fragments of partially covered reservations.
	DeleteRange(courtID string, scope Scope, from, to string) error

	// DeleteAllForScope removes every reservation of the court in the scope.
	DeleteAllForScope(courtID string, scope Scope) error

	// ListForCourt returns the court's reservations, date entries first.
	ListForCourt(courtID string) ([]Reservation, error)
}
