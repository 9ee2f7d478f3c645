package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/hearts/internal/game/card"
	"github.com/palemoky/hearts/internal/protocol"
)

func TestCardRoundTrip(t *testing.T) {
	t.Parallel()

	original := card.QueenOfSpades

	// Card -> Info -> Card
	info := CardToInfo(original)
	assert.Equal(t, protocol.CardInfo{Suit: 3, Rank: 12}, info)

	result, err := InfoToCard(info)
	require.NoError(t, err)
	assert.Equal(t, original, result)
}

func TestCardsRoundTrip(t *testing.T) {
	t.Parallel()

	originals := card.MustParse("2C", "10H", "AS")

	infos := CardsToInfos(originals)
	require.Len(t, infos, len(originals))

	results, err := InfosToCards(infos)
	require.NoError(t, err)
	assert.Equal(t, originals, results)
}

func TestInfoToCard_Invalid(t *testing.T) {
	t.Parallel()

	tests := []protocol.CardInfo{
		{Suit: 4, Rank: 5},
		{Suit: -1, Rank: 5},
		{Suit: 0, Rank: 1},
		{Suit: 2, Rank: 15},
	}

	for _, info := range tests {
		_, err := InfoToCard(info)
		assert.Error(t, err, "%+v", info)
	}

	_, err := InfosToCards([]protocol.CardInfo{{Suit: 0, Rank: 2}, {Suit: 9, Rank: 2}})
	assert.Error(t, err)
}

func TestCardsToInfos_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, CardsToInfos(nil))
}
