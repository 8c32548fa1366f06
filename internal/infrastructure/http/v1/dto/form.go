package dto

// CreateFormRequest opens a form for a document type.
type CreateFormRequest struct {
	Type string `json:"type" binding:"required"`
}

// LinkRequest selects a previously listed link candidate.
type LinkRequest struct {
	Code string `json:"code" binding:"required"`
}
