package domain

import "time"

// ReportFilter narrows a report to records created in [From, To) and to the
// listed kinds. Zero values mean unbounded and all kinds.
type ReportFilter struct {
	From  *time.Time   `json:"from,omitempty"`
	To    *time.Time   `json:"to,omitempty"`
	Kinds []RecordKind `json:"kinds,omitempty"`
}

type Report struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Filter      ReportFilter       `json:"filter"`
	Counts      map[RecordKind]int `json:"counts"`
	Deals       *DealMetrics       `json:"deals,omitempty"`
	Leads       *LeadMetrics       `json:"leads,omitempty"`
	Activities  *ActivityMetrics   `json:"activities,omitempty"`
}

type DealMetrics struct {
	Open          int                `json:"open"`
	Won           int                `json:"won"`
	Lost          int                `json:"lost"`
	PipelineValue float64            `json:"pipelineValue"`
	WeightedValue float64            `json:"weightedValue"`
	WonValue      float64            `json:"wonValue"`
	ValueByStage  map[string]float64 `json:"valueByStage"`
	WinRate       float64            `json:"winRate"` // won / (won + lost)
}

type LeadMetrics struct {
	ByStatus       map[string]int `json:"byStatus"`
	ConversionRate float64        `json:"conversionRate"`
}

type ActivityMetrics struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	ByType         map[string]int `json:"byType"`
	CompletionRate float64        `json:"completionRate"`
}
