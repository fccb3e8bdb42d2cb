package domain

type Filter struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ExternalURL string    `json:"external_url"`
	InputType   ValueType `json:"input_type"`
	OutputType  ValueType `json:"output_type"`
	IsPipeline  bool      `json:"is_pipeline"`
	FilterIDs   []string  `json:"filter_ids"`
	Description *string   `json:"description,omitempty"`
}

// Accepts сообщает, можно ли подать значение типа t на вход фильтра
func (f *Filter) Accepts(t ValueType) bool {
	return f.InputType == t
}

func FilterIDsOf(filters []*Filter) []string {
	ids := make([]string, 0, len(filters))
	for _, f := range filters {
		ids = append(ids, f.ID)
	}
	return ids
}
