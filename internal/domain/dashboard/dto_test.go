package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatWorkHours(t *testing.T) {
	assert.Equal(t, "0h 0m", FormatWorkHours(0))
	assert.Equal(t, "120h 54m", FormatWorkHours(120*60+54))
	assert.Equal(t, "0h 0m", FormatWorkHours(-5))
}
