// Package uploadbroker brokers direct-to-storage gallery uploads.
//
// The broker never proxies upload bytes. InitiateUpload hands the client a
// time-boxed presigned PUT URL for a freshly derived object key; the client
// writes straight to the bucket. CompleteUpload verifies the object landed
// and appends one submission row to the spreadsheet-backed ledger using a
// short-lived service-account access token.
//
// Subpackages hold the signing machinery (sigv4), the service-account token
// flow (googleauth), the ledger client (sheets), key derivation (objectkey),
// storage backends (storage), the HTTP surface (api) and configuration
// loading (config).
package uploadbroker
