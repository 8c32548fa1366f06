package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoneyLoose(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "30", want: "30", ok: true},
		{in: " 1,250.50 ", want: "1250.5", ok: true},
		{in: "-5", want: "-5", ok: true},
		{in: ".5", want: "0.5", ok: true},
		{in: "abc", ok: false},
		{in: "1e-20000000", ok: false},
		{in: "2E3", ok: false},
		{in: "1.2.3", ok: false},
		{in: "--1", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseMoneyLoose(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got.String(), tt.in)
		}
	}
}

func TestClampAndRound(t *testing.T) {
	assert.True(t, Clamp(MustMoney("-1"), Zero(), MustMoney("10")).IsZero())
	assert.Equal(t, "10", Clamp(MustMoney("11"), Zero(), MustMoney("10")).String())
	assert.Equal(t, "2.35", Round2(MustMoney("2.345")).String())
	assert.True(t, NonNegative(MustMoney("-0.01")).IsZero())
}
