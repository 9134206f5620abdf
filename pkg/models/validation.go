package models

// ValidationResult is the outcome of checking a UBL document against the Peppol rule set.
// Only Valid is persisted; Errors and Warnings are returned to the caller.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
