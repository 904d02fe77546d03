package models

// ChatRequest is the inbound question payload.
type ChatRequest struct {
	Question string `json:"question"`
	Subject  string `json:"subject"`
	Medium   string `json:"medium"`
}

// NormalizedQuery is the canonical-script question plus its search keywords.
type NormalizedQuery struct {
	Question string
	Keywords []string
}

// ImageInfo is the illustration attached to an answer, when one was found.
type ImageInfo struct {
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	PageNumber  int    `json:"page_number"`
}

// ChatResult is the pipeline outcome before credit accounting.
type ChatResult struct {
	Interpreted string
	Answer      string
	Image       *ImageInfo
	// Generated is true only when the model produced an answer from
	// retrieved context; fallback messages never consume a credit.
	Generated bool
}

// ChatResponse is the caller-facing success body. CreditsLeft is either the
// remaining integer balance or the literal "Unlimited".
type ChatResponse struct {
	QuestionInterpreted string     `json:"question_interpreted"`
	Answer              string     `json:"answer"`
	Image               *ImageInfo `json:"image"`
	CreditsLeft         any        `json:"credits_left"`
}
