// Package id generates the sortable unique identifiers
// used for messages, notifications and bookings.
package id

import "github.com/rs/xid"

func Generate() string {
	return xid.New().String()
}

func Valid(s string) bool {
	id, err := xid.FromString(s)
	if err != nil {
		return false
	}
	return !id.IsNil() && !id.IsZero()
}
