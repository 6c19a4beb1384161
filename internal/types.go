package internal

type BlockKind string

const (
	BlockHeader BlockKind = "header"
	BlockItems  BlockKind = "items"
)

// Block is one classified line of the source document. A header block sets
// the running section for every block after it until the next header.
type Block struct {
	Kind    BlockKind
	Text    string
	Section *string
	Raw     string
}

// ExpandedEntry is one segment produced from an items block. Directive is set
// for vague non-item phrases ("surprise us"); ItemText is set otherwise.
// Category and SharedQty apply only to entries expanded from the same line.
type ExpandedEntry struct {
	Raw       string
	Section   *string
	Directive *string
	ItemText  string
	Category  *string
	SharedQty *string
}

// ParsedItem is the terminal record of the normalization pipeline.
// Exactly one of Name and Directive is non-nil.
type ParsedItem struct {
	Raw        string
	Name       *string
	Qty        string
	Notes      string
	LookupTerm *string
	Category   *string
	Section    *string
	Directive  *string
}

// IsDirective reports whether the record is a skipped vague phrase rather
// than a real item.
func (p ParsedItem) IsDirective() bool {
	return p.Directive != nil
}

// ItemLocation is the result of an aisle lookup for one term.
type ItemLocation struct {
	Term   string  `json:"term"`
	Aisle  string  `json:"aisle"`
	Zone   *string `json:"zone,omitempty"`
	Source string  `json:"source"`
}

// ResolvedItem pairs a parsed item with its store location, when one was
// found. Directives and unknown items carry a nil Location.
type ResolvedItem struct {
	ParsedItem
	Location *ItemLocation
}

// ListRow is a stored incoming shopping list.
type ListRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

// FetchedListMessage is a raw message pulled from a mailbox before storage.
type FetchedListMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// ExportRow is the flattened shape written to XLSX exports.
type ExportRow struct {
	Position       int
	RawLine        string
	Name           *string
	Qty            string
	Notes          string
	LookupTerm     *string
	Category       *string
	Section        *string
	Directive      *string
	Aisle          *string
	Zone           *string
	LocationSource *string
}
