package model

// MonthlyCount is one month's document counts for the stats chart.
type MonthlyCount struct {
	Month    string `json:"month"` // YYYY-MM
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DocumentStats aggregates document counts and the latest reference number
// seen per type. LastInboundRef/LastOutboundRef are display-formatted and
// empty when no document of that type exists.
type DocumentStats struct {
	Total           int            `json:"total"`
	InboundCount    int            `json:"inbound_count"`
	OutboundCount   int            `json:"outbound_count"`
	LastInboundRef  string         `json:"last_inbound_ref"`
	LastOutboundRef string         `json:"last_outbound_ref"`
	Monthly         []MonthlyCount `json:"chart_data"`
}
