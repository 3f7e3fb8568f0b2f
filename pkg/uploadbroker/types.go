package uploadbroker

// InitiateUploadRequest is the upload intent declared by the client before
// any bytes move. It is validated, never persisted.
type InitiateUploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
}

// InitiateUploadResponse carries everything the client needs to perform the
// storage write itself.
type InitiateUploadResponse struct {
	UploadURL   string
	ObjectKey   string
	FileURL     string
	ContentType string
}

// CompleteUploadRequest registers metadata for an object the client claims
// to have written.
type CompleteUploadRequest struct {
	ObjectKey   string
	Title       string
	Date        string
	Description string
}

// CompleteUploadResponse confirms the ledger append.
type CompleteUploadResponse struct {
	OK           bool
	SubmissionID string
	FileURL      string
}

// LedgerRow is one append-only submission record. Ordering in the ledger is
// append order; rows are never updated or deleted.
type LedgerRow struct {
	SubmissionID string
	Title        string
	Date         string
	Description  string
	FileURL      string
}

// Cells returns the row in ledger column order (A:E).
func (r LedgerRow) Cells() []string {
	return []string{r.SubmissionID, r.Title, r.Date, r.Description, r.FileURL}
}
