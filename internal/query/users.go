package query

import (
	"strings"
	"time"

	"github.com/simp-lee/dating/internal/domain"
)

// Relations holds the like sets a member listing can be restricted to.
// Likers are the users who like the subject; Likees are the users the subject likes.
type Relations struct {
	Likers []uint
	Likees []uint
}

// DOBRange turns an inclusive age range into a date-of-birth window.
// The lower bound uses maxAge+1 so that anyone who has not yet reached
// their (maxAge+1)th birthday is still included.
func DOBRange(minAge, maxAge int, now time.Time) (minDOB, maxDOB time.Time) {
	return now.AddDate(-(maxAge + 1), 0, 0), now.AddDate(-minAge, 0, 0)
}

// UserFilters returns the predicates of a member listing. An empty gender is
// rejected.
func UserFilters(p domain.UserParams, rel Relations, now time.Time) ([]Predicate[domain.User], error) {
	if strings.TrimSpace(p.Gender) == "" {
		return nil, domain.InvalidArgument("gender is required")
	}

	filters := []Predicate[domain.User]{
		func(u domain.User) bool { return u.ID != p.UserID },
		func(u domain.User) bool { return u.Gender == p.Gender },
	}

	if p.Likers {
		filters = append(filters, idIn(rel.Likers))
	}
	if p.Likees {
		filters = append(filters, idIn(rel.Likees))
	}

	if p.HasAgeFilter() {
		minDOB, maxDOB := DOBRange(p.MinAge, p.MaxAge, now)
		filters = append(filters, func(u domain.User) bool {
			return !u.DateOfBirth.Before(minDOB) && !u.DateOfBirth.After(maxDOB)
		})
	}

	return filters, nil
}

// UserOrdering returns the comparison for the requested order, newest first.
func UserOrdering(order domain.UserOrder) func(a, b domain.User) int {
	switch domain.ParseUserOrder(string(order)) {
	case domain.OrderByCreated:
		return Descending(func(u domain.User) time.Time { return u.CreatedAt }, userID)
	default:
		return Descending(func(u domain.User) time.Time { return u.LastActive }, userID)
	}
}

// UserPlan assembles the full query for a member listing.
func UserPlan(p domain.UserParams, rel Relations, now time.Time) (Plan[domain.User], error) {
	filters, err := UserFilters(p, rel, now)
	if err != nil {
		return Plan[domain.User]{}, err
	}
	return Plan[domain.User]{
		Filters:    filters,
		Compare:    UserOrdering(p.OrderBy),
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func userID(u domain.User) uint { return u.ID }

func idIn(ids []uint) Predicate[domain.User] {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(u domain.User) bool {
		_, ok := set[u.ID]
		return ok
	}
}
