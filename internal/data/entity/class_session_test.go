package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveCapacity(t *testing.T) {
	override := 5
	zero := 0

	cases := []struct {
		name     string
		session  ClassSession
		expected int
	}{
		{"template only", ClassSession{TemplateCapacity: 20}, 20},
		{"override wins", ClassSession{TemplateCapacity: 20, CapacityOverride: &override}, 5},
		{"zero override ignored", ClassSession{TemplateCapacity: 20, CapacityOverride: &zero}, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.session.EffectiveCapacity())
		})
	}
}

func TestIsBookable(t *testing.T) {
	assert.True(t, (&ClassSession{Status: SessionStatusScheduled}).IsBookable())
	assert.False(t, (&ClassSession{Status: SessionStatusCanceled}).IsBookable())
}

func TestBookingActive(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusBooked}).Active())
	assert.True(t, (&Booking{Status: BookingStatusCheckedIn}).Active())
	assert.False(t, (&Booking{Status: BookingStatusCanceled}).Active())
}
