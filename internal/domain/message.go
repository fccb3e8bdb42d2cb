package domain

import "time"

// Message - запись доставки одного логического сообщения одному получателю.
// ValueIDs[0] - исходное значение, FilterIDs[i] породил ValueIDs[i+1].
type Message struct {
	MessageID  string    `json:"message_id"`
	ChatID     string    `json:"chat_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
	ValueIDs   []string  `json:"value_ids"`
	FilterIDs  []string  `json:"filter_ids"`
}

// MessageFields - поля, из которых создается новая запись
type MessageFields struct {
	ChatID     string
	SenderID   string
	ReceiverID string
	CreatedAt  time.Time
}

// Consistent проверяет инвариант len(ValueIDs) == len(FilterIDs)+1
func (m *Message) Consistent() bool {
	return len(m.ValueIDs) > 0 && len(m.ValueIDs) == len(m.FilterIDs)+1
}

// Steps - количество примененных фильтров
func (m *Message) Steps() int {
	return len(m.FilterIDs)
}

func (m *Message) LatestValueID() string {
	if len(m.ValueIDs) == 0 {
		return ""
	}
	return m.ValueIDs[len(m.ValueIDs)-1]
}

func (m *Message) Clone() *Message {
	c := *m
	c.ValueIDs = append(make([]string, 0, len(m.ValueIDs)+1), m.ValueIDs...)
	c.FilterIDs = append(make([]string, 0, len(m.FilterIDs)+1), m.FilterIDs...)
	return &c
}

// MessageView - запись сообщения с развернутой историей значений
type MessageView struct {
	*Message
	Values []*Value `json:"values"`
}
