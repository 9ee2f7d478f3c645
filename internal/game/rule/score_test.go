package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/hearts/internal/game/card"
)

func TestTrickWinner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		plays  []string
		lead   card.Suit
		winner int
	}{
		{"highest of led suit", []string{"5C", "KC", "2C", "9C"}, card.Club, 1},
		{"off-suit ace never wins", []string{"5C", "AS", "AH", "6C"}, card.Club, 3},
		{"leader keeps it", []string{"QD", "AS", "KH", "2C"}, card.Diamond, 0},
		{"ten beats nine", []string{"9H", "10H"}, card.Heart, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.winner, TrickWinner(card.MustParse(tt.plays...), tt.lead))
		})
	}
}

func TestTrickPoints(t *testing.T) {
	t.Parallel()

	points, hasHeart := TrickPoints(card.MustParse("5C", "3H", "QS", "9C"))
	assert.Equal(t, 14, points)
	assert.True(t, hasHeart)

	points, hasHeart = TrickPoints(card.MustParse("5C", "AC", "QD", "9C"))
	assert.Zero(t, points)
	assert.False(t, hasHeart)

	points, _ = TrickPoints(card.MustParse("2H", "3H", "4H", "5H"))
	assert.Equal(t, 4, points)
}

func TestTrickPoints_OrderIndependent(t *testing.T) {
	t.Parallel()

	a, _ := TrickPoints(card.MustParse("3H", "QS", "5C", "9C"))
	b, _ := TrickPoints(card.MustParse("9C", "5C", "QS", "3H"))
	assert.Equal(t, a, b)
}

func TestThresholdAndLowest(t *testing.T) {
	t.Parallel()

	assert.False(t, ThresholdReached([]int{10, 49, 0, 3}, 50))
	assert.True(t, ThresholdReached([]int{10, 50, 0, 3}, 50))

	assert.Equal(t, 2, LowestScore([]int{10, 50, 0, 3}))
	assert.Equal(t, 1, LowestScore([]int{12, 4, 4, 30}), "earliest seat wins a tie")
}
