package inicheck

// Summary is the wire form of a Report, shared by the HTTP API, the MCP
// tools and the CLI's JSON output.
type Summary struct {
	Valid bool          `json:"valid" yaml:"valid"`
	Items []ItemSummary `json:"items" yaml:"items"`
}

// ItemSummary describes the outcome for one item.
type ItemSummary struct {
	Section  string   `json:"section" yaml:"section"`
	Item     string   `json:"item" yaml:"item"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`
	Valid    bool     `json:"valid" yaml:"valid"`
	Messages []string `json:"messages,omitempty" yaml:"messages,omitempty"`
	// Value is the normalized value, set only for valid items.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
}

// Summary converts the report to its wire form. Messages hold the failure
// reasons only.
func (r *Report) Summary() Summary {
	out := Summary{Valid: r.Valid(), Items: make([]ItemSummary, 0, len(r.Results))}
	for _, res := range r.Results {
		item := ItemSummary{
			Section: res.Section,
			Item:    res.Item,
			Type:    res.Type.Name(),
			Valid:   res.Valid(),
		}
		for _, iss := range res.IssueList() {
			item.Messages = append(item.Messages, iss.Reason)
		}
		if res.Update != nil {
			item.Value = res.Update.Value
		}
		out.Items = append(out.Items, item)
	}
	return out
}
