// internal/service/command_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderCommand(t *testing.T) {
	t.Run("SubstitutesAllTokens", func(t *testing.T) {
		got := renderCommand("*610*{pin}*{phone}*{amount}#", "0555123456", "1000.00", "1234")
		assert.Equal(t, "*610*1234*0555123456*1000.00#", got)
	})

	t.Run("PriceTokenIsAliasForAmount", func(t *testing.T) {
		got := renderCommand("*720*55*{phone}*{price}#", "0777123456", "2500.00", "1234")
		assert.Equal(t, "*720*55*0777123456*2500.00#", got)
	})

	t.Run("EmptyPINFallsBackToDefault", func(t *testing.T) {
		got := renderCommand("*100*{pin}*{phone}*{amount}#", "0550000000", "500.00", "")
		assert.Equal(t, "*100*0000*0550000000*500.00#", got)
	})

	t.Run("TemplateWithoutTokensPassesThrough", func(t *testing.T) {
		got := renderCommand("*222#", "0550000000", "500.00", "1234")
		assert.Equal(t, "*222#", got)
	})
}

func TestDefaultFlexyTemplates(t *testing.T) {
	for _, op := range []string{"mobilis", "djezzy", "ooredoo"} {
		assert.Contains(t, defaultFlexyTemplates, op)
	}
}
