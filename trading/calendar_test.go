package trading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTradingDay(t *testing.T) {
	assert.True(t, IsTradingDay(Date(2024, 1, 5)))  // Friday
	assert.False(t, IsTradingDay(Date(2024, 1, 6))) // Saturday
	assert.False(t, IsTradingDay(Date(2024, 1, 7))) // Sunday
	assert.True(t, IsTradingDay(Date(2024, 1, 8)))  // Monday

	// Sunday 20:00 UTC is already Monday in Taipei
	assert.True(t, IsTradingDay(time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC)))
}

func TestTradingDays(t *testing.T) {
	days, err := TradingDays(Date(2024, 1, 4), Date(2024, 1, 9))
	require.NoError(t, err)

	var got []string
	for _, d := range days {
		got = append(got, d.Format("2006-01-02"))
	}
	assert.Equal(t, []string{"2024-01-04", "2024-01-05", "2024-01-08", "2024-01-09"}, got)

	_, err = TradingDays(Date(2024, 1, 9), Date(2024, 1, 4))
	assert.Error(t, err)
}
