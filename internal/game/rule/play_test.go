package rule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/hearts/internal/game/card"
)

func hand(codes ...string) *card.Hand {
	return card.NewHand(card.MustParse(codes...)...)
}

func one(code string) card.Card {
	return card.MustParse(code)[0]
}

func TestCheckPlay(t *testing.T) {
	t.Parallel()

	opening := TrickState{Round: 1, Leading: true}
	firstFollow := TrickState{Round: 1, LeadSuit: card.Club}
	lead := TrickState{Round: 4, Leading: true}
	leadBroken := TrickState{Round: 4, Leading: true, HeartsBroken: true}
	followSpades := TrickState{Round: 4, LeadSuit: card.Spade}
	followClubs := TrickState{Round: 4, LeadSuit: card.Club}

	tests := []struct {
		name   string
		state  TrickState
		hand   *card.Hand
		card   string
		reason string // empty means legal
	}{
		{"opening lead 2C", opening, hand("2C", "5H", "KD"), "2C", ""},
		{"opening lead other club", opening, hand("2C", "3C", "KD"), "3C", ReasonOpenWithTwoOfClubs},
		{"first trick heart discard", firstFollow, hand("5H", "KD"), "5H", ReasonNoHeartsFirstTrick},
		{"first trick queen discard", firstFollow, hand("QS", "KD"), "QS", ReasonNoQueenFirstTrick},
		{"first trick diamond discard", firstFollow, hand("5H", "KD"), "KD", ""},
		{"first trick must follow", firstFollow, hand("3C", "KD"), "KD", ReasonMustFollowSuit},
		{"lead heart unbroken", lead, hand("5H", "3C"), "5H", ReasonHeartsNotBroken},
		{"lead heart with only hearts", lead, hand("5H", "9H"), "5H", ""},
		{"lead heart broken", leadBroken, hand("5H", "3C"), "5H", ""},
		{"follow suit", followClubs, hand("3C", "AH"), "3C", ""},
		{"must follow suit", followClubs, hand("3C", "AH"), "AH", ReasonMustFollowSuit},
		{"void may discard heart", followClubs, hand("AH", "KD"), "AH", ""},
		{"queen before break", followSpades, hand("QS", "2S"), "QS", ReasonQueenBeforeBreak},
		{"queen as only spade", followSpades, hand("QS", "5D"), "QS", ""},
		{"queen discard before break", followClubs, hand("QS", "5D"), "QS", ReasonQueenBeforeBreak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckPlay(tt.state, one(tt.card), tt.hand)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}

			var illegal *IllegalPlayError
			require.True(t, errors.As(err, &illegal), "expected IllegalPlayError, got %v", err)
			assert.Equal(t, tt.reason, illegal.Reason)
			assert.Equal(t, one(tt.card), illegal.Card)
		})
	}
}

func TestCheckPlay_RelaxedWhenNothingStrictlyLegal(t *testing.T) {
	t.Parallel()

	// First trick, void in clubs, holding only points
	st := TrickState{Round: 1, LeadSuit: card.Club}
	h := hand("QS", "5H", "9H")

	assert.NoError(t, CheckPlay(st, one("5H"), h))
	assert.NoError(t, CheckPlay(st, one("QS"), h))
	assert.ElementsMatch(t, card.MustParse("QS", "5H", "9H"), LegalCards(st, h))
}

func TestLegalCards(t *testing.T) {
	t.Parallel()

	st := TrickState{Round: 3, LeadSuit: card.Diamond}
	h := hand("2D", "KD", "AH", "3C")
	assert.Equal(t, card.MustParse("2D", "KD"), LegalCards(st, h))

	opening := TrickState{Round: 1, Leading: true}
	assert.Equal(t, []card.Card{card.TwoOfClubs}, LegalCards(opening, hand("2C", "3C", "4H")))
}

func TestLowestLegal(t *testing.T) {
	t.Parallel()

	st := TrickState{Round: 5, Leading: true}
	c, ok := LowestLegal(st, hand("3H", "4C", "9S", "4D"))
	require.True(t, ok)
	assert.Equal(t, one("4C"), c, "hearts cannot be led, lowest rank wins, clubs before diamonds")

	_, ok = LowestLegal(st, card.NewHand())
	assert.False(t, ok)
}
