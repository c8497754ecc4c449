package table

import "github.com/brodenix/recql/page"

// RecordID is a locator: a durable address within a table until the table
// is cleared, per the GLOSSARY.
type RecordID struct {
	PageID page.ID
	Slot   int
}
