package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchCriteria_Matches(t *testing.T) {
	toyota := &Listing{Brand: "Toyota", Type: "SUV", Transmission: "Automatic", Color: "Red"}
	honda := &Listing{Brand: "Honda", Type: "Sedan", Transmission: "Manual", Color: "Blue"}

	t.Run("EmptyCriteriaMatchEverything", func(t *testing.T) {
		c := SearchCriteria{}
		assert.True(t, c.IsEmpty())
		assert.True(t, c.Matches(toyota))
		assert.True(t, c.Matches(honda))
	})

	t.Run("CaseInsensitiveSubstring", func(t *testing.T) {
		c := SearchCriteria{Brand: "oyo"}
		assert.True(t, c.Matches(toyota))
		assert.False(t, c.Matches(honda))

		c = SearchCriteria{Brand: "TOYOTA"}
		assert.True(t, c.Matches(toyota))
	})

	t.Run("AllPresentCriteriaMustMatch", func(t *testing.T) {
		c := SearchCriteria{Brand: "toy", Transmission: "auto"}
		assert.True(t, c.Matches(toyota))

		c = SearchCriteria{Brand: "toy", Transmission: "manual"}
		assert.False(t, c.Matches(toyota))
	})

	t.Run("AbsentFieldsImposeNoConstraint", func(t *testing.T) {
		c := SearchCriteria{Color: "blue"}
		assert.False(t, c.Matches(toyota))
		assert.True(t, c.Matches(honda))
	})
}
