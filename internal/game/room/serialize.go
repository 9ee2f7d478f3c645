package room

import (
	"time"

	"github.com/palemoky/hearts/internal/game/session"
	"github.com/palemoky/hearts/internal/server/storage"
)

// toRoomData 将会话快照转换为可序列化的 RoomData
func toRoomData(info session.Info, now time.Time) *storage.RoomData {
	return &storage.RoomData{
		ID:         info.ID,
		Name:       info.Name,
		Phase:      info.Phase.String(),
		Seated:     info.Seated,
		Roster:     info.Roster,
		Active:     info.Active,
		Stable:     info.Stable,
		GameNumber: info.GameNumber,
		UpdatedAt:  now.Unix(),
	}
}
