package serializer

// ChoiceItem is the front-end shape of one choice: {"id": "open", "identity": "Open"}.
type ChoiceItem struct {
	ID       string `json:"id"`
	Identity string `json:"identity"`
}

// SerializeChoices builds choice items from bare slugs, labelling each with
// its display name.
func SerializeChoices(values []string) []ChoiceItem {
	out := make([]ChoiceItem, 0, len(values))
	for _, v := range values {
		out = append(out, ChoiceItem{ID: v, Identity: DisplayName(v)})
	}
	return out
}

// SerializeChoiceSet builds choice items from a declared choice set.
func SerializeChoiceSet(choices []Choice) []ChoiceItem {
	out := make([]ChoiceItem, 0, len(choices))
	for _, c := range choices {
		out = append(out, ChoiceItem{ID: c.Value, Identity: firstOf(c.Label, DisplayName(c.Value))})
	}
	return out
}
