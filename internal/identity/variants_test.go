package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

func TestNameVariants(t *testing.T) {
	p := model.Professional{FirstName: "Jane", LastName: "Doe"}
	variants := NameVariants(p)

	for _, want := range []string{
		"Jane Doe",
		"Doe, Jane",
		"Doe Jane",
		"Dr. Jane Doe",
		"Dr Jane Doe",
		"Jane Doe, RMT",
		"Jane Doe RMT",
		"J. Doe",
		"Jane D.",
		"J Doe",
		"Jane D",
		"Jane",
		"Doe",
	} {
		assert.Contains(t, variants, want)
	}

	assert.IsIncreasing(t, variants)
}

func TestNameVariantsCommonNames(t *testing.T) {
	p := model.Professional{
		FirstName:       "Jonathan",
		LastName:        "Doe",
		CommonFirstName: "Jon",
	}
	variants := NameVariants(p)

	assert.Contains(t, variants, "Jonathan Doe")
	assert.Contains(t, variants, "Jon Doe")
	assert.Contains(t, variants, "Doe, Jon")
}

func TestNameVariantsSkipsShortForms(t *testing.T) {
	p := model.Professional{FirstName: "A", LastName: "Li"}
	variants := NameVariants(p)

	assert.NotContains(t, variants, "A")
	assert.Contains(t, variants, "Li")
	assert.Contains(t, variants, "A Li")
	// "A. Li" keeps the dotted initial even though the first name alone is
	// too short to search for.
	assert.Contains(t, variants, "A. Li")
}

func TestNameVariantsDuplicateCommonName(t *testing.T) {
	p := model.Professional{
		FirstName:       "Jane",
		LastName:        "Doe",
		CommonFirstName: "jane",
		CommonLastName:  "Doe",
	}
	variants := NameVariants(p)

	count := 0
	for _, v := range variants {
		if v == "Jane Doe" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLocationVariants(t *testing.T) {
	loc := model.PracticeLocation{
		EmployerName: "Healing Hands Wellness",
		Address:      "123 Main Street, Suite 4",
		City:         "Toronto",
	}
	variants := LocationVariants(loc)

	assert.Contains(t, variants, "Healing Hands Wellness")
	assert.Contains(t, variants, "Healing Hands")
	assert.Contains(t, variants, "Toronto")
	assert.Contains(t, variants, "123 Main Street")
	assert.IsIncreasing(t, variants)
}

func TestLocationVariantsNoSuffix(t *testing.T) {
	loc := model.PracticeLocation{EmployerName: "Bodyworks", City: "Ottawa"}
	variants := LocationVariants(loc)

	assert.Equal(t, []string{"Bodyworks", "Ottawa"}, variants)
}

func TestLocationVariantsStreetForms(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"45 King St W", "45 King St"},
		{"900 Lakeshore Boulevard", "900 Lakeshore Boulevard"},
		{"unit 2, 77 Elm Ave", "77 Elm Ave"},
		{"PO Box 100", ""},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			variants := LocationVariants(model.PracticeLocation{Address: tt.address})
			if tt.want == "" {
				assert.Empty(t, variants)
				return
			}
			assert.Contains(t, variants, tt.want)
		})
	}
}
