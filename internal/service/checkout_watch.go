package service

import "sync"

// CheckoutEvent 结算状态机推进事件
type CheckoutEvent struct {
	SessionID  string `json:"session_id"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason,omitempty"`
	OrderID    uint   `json:"order_id,omitempty"`
}

// CheckoutSubscription 结算状态订阅句柄。
// 使用完毕必须调用 Close，否则订阅会一直挂在 hub 上。
type CheckoutSubscription struct {
	hub       *checkoutHub
	sessionID string
	ch        chan CheckoutEvent
	once      sync.Once
}

// Updates 返回事件通道。会话完成或失败后由 Close 关闭。
func (s *CheckoutSubscription) Updates() <-chan CheckoutEvent {
	return s.ch
}

// Close 取消订阅并关闭事件通道，可重复调用。
func (s *CheckoutSubscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// checkoutHub 进程内结算事件广播器
type checkoutHub struct {
	mu   sync.Mutex
	subs map[string]map[*CheckoutSubscription]struct{}
}

func newCheckoutHub() *checkoutHub {
	return &checkoutHub{subs: make(map[string]map[*CheckoutSubscription]struct{})}
}

// Subscribe 订阅指定会话的状态事件
func (h *checkoutHub) Subscribe(sessionID string) *CheckoutSubscription {
	sub := &CheckoutSubscription{
		hub:       h,
		sessionID: sessionID,
		ch:        make(chan CheckoutEvent, 8),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*CheckoutSubscription]struct{})
	}
	h.subs[sessionID][sub] = struct{}{}
	return sub
}

func (h *checkoutHub) remove(sub *CheckoutSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[sub.sessionID]
	if set == nil {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.sessionID)
	}
}

// publish 向会话的所有订阅者广播事件。订阅者消费过慢时丢弃事件而不是阻塞。
func (h *checkoutHub) publish(event CheckoutEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[event.SessionID] {
		select {
		case sub.ch <- event:
		default:
		}
	}
}
