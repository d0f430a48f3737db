package seeders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogData(t *testing.T) {
	assert.NotEmpty(t, catalogData)

	categoryNames := make(map[string]bool)
	for _, category := range catalogData {
		assert.False(t, categoryNames[category.NameRu], "категория %q повторяется", category.NameRu)
		categoryNames[category.NameRu] = true

		assert.NotEmpty(t, category.Icon, category.NameRu)
		assert.NotEmpty(t, category.NameHe, category.NameRu)
		assert.NotEmpty(t, category.NameEn, category.NameRu)
		assert.NotEmpty(t, category.Parts, "в категории %q нет деталей", category.NameRu)

		partNames := make(map[string]bool)
		for _, part := range category.Parts {
			assert.NotEmpty(t, strings.TrimSpace(part.NameRu), category.NameRu)
			assert.False(t, partNames[part.NameRu], "деталь %q повторяется в %q", part.NameRu, category.NameRu)
			partNames[part.NameRu] = true
		}
	}
}

func TestMechanicsData(t *testing.T) {
	emails := make(map[string]bool)
	for _, mechanic := range mechanicsData {
		assert.Equal(t, strings.ToLower(mechanic.Email), mechanic.Email, "email хранится в нижнем регистре")
		assert.False(t, emails[mechanic.Email], "email %q повторяется", mechanic.Email)
		emails[mechanic.Email] = true
		assert.True(t, strings.HasPrefix(mechanic.Phone, "+972"), mechanic.Name)
	}
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	if v := nullIfEmpty("Brakes"); assert.NotNil(t, v) {
		assert.Equal(t, "Brakes", *v)
	}
}
