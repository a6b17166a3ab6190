package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrder_IsExpired(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	testCases := []struct {
		name      string
		expiresAt *time.Time
		expected  bool
	}{
		{"срок в будущем — аренда активна", &future, false},
		{"срок в прошлом — аренда истекла", &past, true},
		{"без срока — считается истекшей", nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order := &Order{ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.expected, order.IsExpired(now))
		})
	}
}

func TestOrder_TableName(t *testing.T) {
	assert.Equal(t, "orders", Order{}.TableName())
}
