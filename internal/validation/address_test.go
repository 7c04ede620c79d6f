package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAddress(t *testing.T) {
	assert.True(t, IsAddress("0x1234567890abcdef1234567890abcdef12345678"))
	assert.True(t, IsAddress("0x1234567890ABCDEF1234567890ABCDEF12345678"))
	assert.True(t, IsAddress(ZeroAddress))

	assert.False(t, IsAddress(""))
	assert.False(t, IsAddress("0x123"))
	assert.False(t, IsAddress("1234567890abcdef1234567890abcdef12345678"))
	assert.False(t, IsAddress("0xg234567890abcdef1234567890abcdef12345678"))
	assert.False(t, IsAddress("0x1234567890abcdef1234567890abcdef123456789"))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t,
		"0x1234567890abcdef1234567890abcdef12345678",
		NormalizeAddress("  0x1234567890ABCDEF1234567890abcdef12345678 "))
}

func TestValidatorAddress(t *testing.T) {
	v := New()
	v.Address("address", "0x1234567890abcdef1234567890abcdef12345678")
	assert.True(t, v.Valid())

	v = New()
	v.Address("address", "nope")
	assert.False(t, v.Valid())
	assert.Contains(t, v.Errors, "address")

	v = New()
	v.Address("address", ZeroAddress)
	assert.False(t, v.Valid())
}
