package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCity(t *testing.T) {
	accepted := []string{
		"Москва",
		"London",
		"Нижний Новгород",
		"Санкт-Петербург",
		"New York",
		"Ab",
		strings.Repeat("я", 50),
		"Rostov-na-Donu",
	}
	for _, city := range accepted {
		assert.True(t, ValidCity(city), "expected %q to be accepted", city)
	}

	rejected := []string{
		"",
		"a",
		"Я",
		strings.Repeat("я", 51),
		strings.Repeat("a", 51),
		"Moscow1",
		"12345",
		"Paris!",
		"Val-d'Or",
		"Köln",
		"Ёлки",
		"city; DROP TABLE",
		"😀😀",
	}
	for _, city := range rejected {
		assert.False(t, ValidCity(city), "expected %q to be rejected", city)
	}
}
