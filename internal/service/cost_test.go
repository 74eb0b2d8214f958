package service

import "testing"

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name           string
		messageLength  int
		recipientCount int
		want           float64
	}{
		{"single segment single recipient", 150, 1, 0.10},
		{"exact segment boundary", 160, 1, 0.10},
		{"one char over the boundary", 161, 1, 0.20},
		{"two segments three recipients", 320, 3, 0.60},
		{"empty message", 0, 5, 0},
		{"no recipients", 100, 0, 0},
		{"negative length", -1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFloatEqual(t, EstimateCost(tt.messageLength, tt.recipientCount), tt.want)
		})
	}
}

func TestApportionCost(t *testing.T) {
	assertFloatEqual(t, ApportionCost(0.60, 3), 0.20)
	assertFloatEqual(t, ApportionCost(0.10, 1), 0.10)
	assertFloatEqual(t, ApportionCost(0.50, 0), 0)
}
