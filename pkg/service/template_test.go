package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EdSoftcase/edson-sub001/pkg/service"
)

func TestResolve(t *testing.T) {
	payload := map[string]interface{}{
		"name":    "Acme Corp",
		"email":   "sales@acme.test",
		"value":   float64(1500),
		"overdue": true,
	}

	t.Run("LiteralPassesThrough", func(t *testing.T) {
		assert.Equal(t, "no placeholders here", service.Resolve("no placeholders here", payload))
		assert.Equal(t, "", service.Resolve("", payload))
	})

	t.Run("SinglePlaceholder", func(t *testing.T) {
		assert.Equal(t, "Follow up with Acme Corp", service.Resolve("Follow up with {name}", payload))
	})

	t.Run("MultiplePlaceholders", func(t *testing.T) {
		assert.Equal(t, "Acme Corp <sales@acme.test>", service.Resolve("{name} <{email}>", payload))
	})

	t.Run("MissingFieldResolvesEmpty", func(t *testing.T) {
		assert.Equal(t, "Follow up with ", service.Resolve("Follow up with {name}", map[string]interface{}{}))
		assert.Equal(t, "Follow up with ", service.Resolve("Follow up with {name}", nil))
	})

	t.Run("NilValueResolvesEmpty", func(t *testing.T) {
		assert.Equal(t, "x", service.Resolve("x{gone}", map[string]interface{}{"gone": nil}))
	})

	t.Run("NumericValue", func(t *testing.T) {
		assert.Equal(t, "deal worth 1500", service.Resolve("deal worth {value}", payload))
		assert.Equal(t, "score 99.5", service.Resolve("score {score}", map[string]interface{}{"score": 99.5}))
	})

	t.Run("BoolValue", func(t *testing.T) {
		assert.Equal(t, "overdue: true", service.Resolve("overdue: {overdue}", payload))
	})

	t.Run("BracesWithoutIdentifierUntouched", func(t *testing.T) {
		assert.Equal(t, "{}", service.Resolve("{}", payload))
		assert.Equal(t, "{ name }", service.Resolve("{ name }", payload))
	})

	t.Run("AdjacentPlaceholders", func(t *testing.T) {
		assert.Equal(t, "Acme Corpsales@acme.test", service.Resolve("{name}{email}", payload))
	})
}

func TestResolveConfig(t *testing.T) {
	payload := map[string]interface{}{"name": "Teste RPA"}
	config := map[string]string{
		"template": "Follow up with {name}",
		"target":   "#sales",
	}
	resolved := service.ResolveConfig(config, payload)
	assert.Equal(t, "Follow up with Teste RPA", resolved["template"])
	assert.Equal(t, "#sales", resolved["target"])
	// input untouched
	assert.Equal(t, "Follow up with {name}", config["template"])
}
