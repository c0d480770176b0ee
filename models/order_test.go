package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBills(t *testing.T) {
	bills := ComputeBills([]OrderItem{
		{Name: "Paneer Tikka", Quantity: 2, Price: 250},
		{Name: "Masala Chai", Quantity: 3, Price: 40},
	})

	assert.Equal(t, 620.0, bills.Total)
	assert.Equal(t, 32.55, bills.Tax)
	assert.Equal(t, 652.55, bills.TotalWithTax)
}

func TestComputeBillsEmpty(t *testing.T) {
	assert.Equal(t, Bills{}, ComputeBills(nil))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidRole(RoleWaiter))
	assert.False(t, ValidRole("chef"))
	assert.True(t, ValidOrderStatus(OrderStatusReady))
	assert.False(t, ValidOrderStatus("cancelled"))
}
