package domain

// TaxType identifies one of the two parallel consumption taxes. Each is
// computed independently with its own rate, reduction, and classification.
type TaxType string

const (
	TaxTypeIBS TaxType = "ibs"
	TaxTypeCBS TaxType = "cbs"
)

// TaxTypes lists both types in computation order.
var TaxTypes = []TaxType{TaxTypeIBS, TaxTypeCBS}

// MatchSource tags which cascade step resolved a line item. The literal
// values appear in exports and API responses.
type MatchSource string

const (
	MatchSourceEAN  MatchSource = "EAN"
	MatchSourceNCM  MatchSource = "NCM"
	MatchSourceName MatchSource = "Nome"
	MatchSourceNone MatchSource = ""
)

// ResolutionStatus is the line-item resolution state machine:
// searching -> found | not_found. Items never return to searching.
type ResolutionStatus string

const (
	StatusSearching ResolutionStatus = "searching"
	StatusFound     ResolutionStatus = "found"
	StatusNotFound  ResolutionStatus = "not_found"
)

// AnalysisStatus is the lifecycle of a bulk analysis job.
type AnalysisStatus string

const (
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// SearchMode selects how a product query is matched.
type SearchMode string

const (
	SearchByName   SearchMode = "name"
	SearchByTariff SearchMode = "ncm"
)

// LookupMode selects how a single-field lookup identifies a product.
type LookupMode string

const (
	LookupByBarcode LookupMode = "barcode"
	LookupByName    LookupMode = "name"
)
