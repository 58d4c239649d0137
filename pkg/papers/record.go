package papers

// Record is a single page in the target database.
type Record struct {
	// ID is the record identifier assigned by the target store.
	ID string

	// Ref is the source item key this record was created from, taken from
	// the record's Zotero ItemID property. Empty for records created by
	// hand that have not been linked to any source item.
	Ref string

	// Properties holds the record's current property values.
	Properties Properties
}

// Linked reports whether the record references a source item.
func (r Record) Linked() bool {
	return r.Ref != ""
}
