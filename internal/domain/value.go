package domain

import "fmt"

type ValueType string

const (
	ValueTypeText  ValueType = "text"
	ValueTypeImage ValueType = "image"
	ValueTypeAudio ValueType = "audio"
)

func (t ValueType) Valid() bool {
	switch t {
	case ValueTypeText, ValueTypeImage, ValueTypeAudio:
		return true
	default:
		return false
	}
}

// IsBinary - image и audio передаются фильтрам сырым телом запроса
func (t ValueType) IsBinary() bool {
	return t == ValueTypeImage || t == ValueTypeAudio
}

func ParseValueType(s string) (ValueType, error) {
	t := ValueType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown value type %q", s)
	}
	return t, nil
}

// Value неизменяем после вставки. Для text Content хранит UTF-8 строку.
type Value struct {
	ID      string    `json:"id"`
	Type    ValueType `json:"type"`
	Content []byte    `json:"-"`
}

func NewTextValue(text string) Value {
	return Value{Type: ValueTypeText, Content: []byte(text)}
}

func (v Value) Text() string {
	return string(v.Content)
}
