package dynrecord

// SubmitRecordDTO carries the untyped candidate mapping from the client.
// Keys are field names; values are whatever JSON the form produced. The
// validator is the only component allowed to interpret them.
type SubmitRecordDTO struct {
	Fields map[string]any `json:"fields"`
}

type RecordsResponse struct {
	Records []*Record `json:"records"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
}
