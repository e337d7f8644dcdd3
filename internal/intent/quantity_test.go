package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voice-grbl/internal/intent"
)

func TestResolveQuantity(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{name: "compound half", text: "one and a half turns", want: 1.5, wantOK: true},
		{name: "compound without and a", text: "two half turns", want: 2.5, wantOK: true},
		{name: "compound quarter", text: "three and a quarter", want: 3.25, wantOK: true},
		{name: "numeral", text: "2 turns", want: 2.0, wantOK: true},
		{name: "decimal numeral", text: "reverse 1.5", want: 1.5, wantOK: true},
		{name: "numeral beats words", text: "one and a half, I mean 3", want: 3.0, wantOK: true},
		{name: "lone half", text: "half a turn", want: 0.5, wantOK: true},
		{name: "lone quarter", text: "a quarter turn please", want: 0.25, wantOK: true},
		{name: "cardinal word", text: "forward two", want: 2.0, wantOK: true},
		{name: "twelve", text: "Twelve spins.", want: 12.0, wantOK: true},
		{name: "zero is found", text: "forward zero turns", want: 0, wantOK: true},
		{name: "first word wins", text: "two then three", want: 2.0, wantOK: true},
		{name: "first numeral wins", text: "4 or 5", want: 4.0, wantOK: true},
		{name: "hyphen is a separator", text: "one-and-a-half", want: 1.5, wantOK: true},
		{name: "word inside word is ignored", text: "someone turned", wantOK: false},
		{name: "nothing", text: "forward please", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intent.ResolveQuantity(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
