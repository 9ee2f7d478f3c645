package session

import (
	"time"

	"github.com/coder/quartz"
)

// timers 会话持有的计时器。出牌与换牌计时共用一个槽位，宽限计时按玩家区分。
type timers struct {
	phase *quartz.Timer
	grace map[string]*quartz.Timer
}

func newTimers() timers {
	return timers{grace: make(map[string]*quartz.Timer)}
}

// armPhase 停掉旧的出牌/换牌计时并重新开始
func (t *timers) armPhase(clock quartz.Clock, d time.Duration, f func(), tag string) {
	t.stopPhase()
	t.phase = clock.AfterFunc(d, f, "Session", tag)
}

func (t *timers) stopPhase() {
	if t.phase != nil {
		t.phase.Stop()
		t.phase = nil
	}
}

// armGrace 同一玩家重复离开时只保留最新的宽限计时
func (t *timers) armGrace(clock quartz.Clock, d time.Duration, userID string, f func()) {
	if old, ok := t.grace[userID]; ok {
		old.Stop()
	}
	t.grace[userID] = clock.AfterFunc(d, f, "Session", "grace")
}

func (t *timers) stopAll() {
	t.stopPhase()
	for id, timer := range t.grace {
		timer.Stop()
		delete(t.grace, id)
	}
}
