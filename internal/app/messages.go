package app

// Message types for the bubbletea app. Work item fetch completions arrive
// as workitem.FetchedMsg, defined next to the coordinator.

// BranchCheckedOutMsg is sent when a checkout attempt finishes.
type BranchCheckedOutMsg struct {
	Name string
	Err  error
}

// BranchDeletedMsg is sent when a delete attempt finishes. SHA is the
// commit the branch pointed at, for the restore hint.
type BranchDeletedMsg struct {
	Name string
	SHA  string
	Err  error
}

// BrowserOpenedMsg is sent after trying to open a work item URL.
type BrowserOpenedMsg struct {
	Err error
}

// URLCopiedMsg is sent after trying to copy a work item URL.
type URLCopiedMsg struct {
	Err error
}

// statusExpiredMsg clears the transient status line. Seq guards against an
// old timer clearing a newer message.
type statusExpiredMsg struct {
	Seq int
}
