package aisle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Milk", "Dairy"},
		{"Salted Butter", "Dairy"},
		{"Ground Beef", "Meat & Seafood"},
		{"Quinoa", "Grains & Pasta"},
		{"Unobtainium", "Pantry"},
		{"  Coconut Milk ", "Canned & Jarred"},
		{"Chicken Broth", "Canned & Jarred"},
		{"peanut butter", "Canned & Jarred"},
		{"All-purpose flour", "Baking"},
		{"Sea Salt", "Spices & Seasonings"},
		{"Extra virgin olive oil", "Condiments & Sauces"},
		{"Frozen peas", "Frozen"},
		{"Green tea", "Beverages"},
		{"", "Pantry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

// Earlier aisles win: Baking's "vanilla" beats Dairy's "cream" and Frozen's
// "ice cream"; Canned & Jarred's "coconut milk" beats Dairy's "milk".
func TestClassifyFirstMatchWins(t *testing.T) {
	assert.Equal(t, "Baking", Classify("Vanilla ice cream"))
	assert.Equal(t, "Dairy", Classify("Sour cream"))
	assert.Equal(t, "Canned & Jarred", Classify("Coconut milk"))
	assert.Equal(t, "Dairy", Classify("Oat milk"))
	assert.Equal(t, "Produce", Classify("Black pepper"))
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Equal(t, "Dairy", Classify("Salted Butter"))
	}
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Equal(t, "Canned & Jarred", names[0])
	assert.Equal(t, Fallback, names[len(names)-1])
	assert.Len(t, names, len(Table())+1)
}

func TestTableReturnsCopy(t *testing.T) {
	copied := Table()
	copied[0].Keywords[0] = "milk"

	assert.Equal(t, "Canned & Jarred", Classify("coconut milk"))
	assert.Equal(t, "Dairy", Classify("milk"))
}
