package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func gift(name string, category int) Gift {
	return Gift{ID: primitive.NewObjectID(), Name: name, Type: category, Available: true}
}

func TestGroupByCategoryKeepsFixedOrder(t *testing.T) {
	gifts := []Gift{
		gift("Football", CategorySports),
		gift("Laptop", CategoryTechnology),
		gift("Tent", CategoryCamping),
		gift("Hoodie", CategoryClothing),
		gift("Headphones", CategoryTechnology),
	}

	sections := GroupByCategory(gifts)

	require.Len(t, sections, 4)
	assert.Equal(t, []string{"Technology", "Clothing", "Camping", "Sports"},
		[]string{sections[0].Label, sections[1].Label, sections[2].Label, sections[3].Label})
	assert.Len(t, sections[0].Gifts, 2)
	assert.Len(t, sections[3].Gifts, 1)
}

func TestGroupByCategoryOmitsEmptySections(t *testing.T) {
	sections := GroupByCategory([]Gift{gift("Tent", CategoryCamping)})

	require.Len(t, sections, 1)
	assert.Equal(t, CategoryCamping, sections[0].Type)
	assert.Equal(t, "Camping", sections[0].Label)
}

func TestGroupByCategoryDropsUnknownCodes(t *testing.T) {
	sections := GroupByCategory([]Gift{gift("Mystery", 99)})
	assert.Empty(t, sections)
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Technology", CategoryLabel(CategoryTechnology))
	assert.Equal(t, "", CategoryLabel(42))
}
