package dto

// RejectRequest carries the feedback accompanying a rejection. At least one of
// Categories or Feedback must be present.
type RejectRequest struct {
	Categories []string `json:"feedbackCategories"`
	Feedback   string   `json:"feedback"`
}
