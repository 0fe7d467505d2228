package domain

import "time"

// RecordDiff names a single field that differs between two otherwise
// matching records.
type RecordDiff struct {
	Field       string `json:"field"`
	SourceValue string `json:"source_value"`
	TargetValue string `json:"target_value"`
}

// ResponseDiff is the outcome of comparing two responses to the same query.
// TimingDiff is signed: target minus source, so a positive value means the
// target was slower.
type ResponseDiff struct {
	Query            DNSQuery      `json:"query"`
	Match            bool          `json:"match"`
	RCodeMatch       bool          `json:"rcode_match"`
	RecordCountMatch bool          `json:"record_count_match"`
	RecordsMatch     bool          `json:"records_match"`
	TimingDiff       time.Duration `json:"timing_diff"`
	SourceResponse   DNSResponse   `json:"source_response"`
	TargetResponse   DNSResponse   `json:"target_response"`
	RecordDiffs      []RecordDiff  `json:"record_diffs,omitempty"`
	MissingInSource  []DNSRecord   `json:"missing_in_source,omitempty"`
	MissingInTarget  []DNSRecord   `json:"missing_in_target,omitempty"`
}

// CompareResult aggregates a batch of response diffs into migration-readiness
// numbers. Only mismatching diffs are retained; matches are counted but
// dropped to bound memory on large batches.
type CompareResult struct {
	Source          ResolverType   `json:"source"`
	Target          ResolverType   `json:"target"`
	QueriesTested   int            `json:"queries_tested"`
	Matches         int            `json:"matches"`
	Mismatches      int            `json:"mismatches"`
	MatchRatio      float64        `json:"match_ratio"`
	AvgTimingDiff   time.Duration  `json:"avg_timing_diff"`
	Diffs           []ResponseDiff `json:"diffs,omitempty"`
	ConfidenceScore float64        `json:"confidence_score"`
	Timestamp       time.Time      `json:"timestamp"`
}
