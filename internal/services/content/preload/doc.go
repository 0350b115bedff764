// Package preload loads a content tree of JSON documents into a catalog
// index before the content service starts listening.
//
// The tree is one level of category directories under a root, each holding
// zero or more *.json files. Categories are read concurrently, but documents
// are merged in enumeration order (categories by name, then files by name),
// so when two documents share an id the later one in that order wins.
//
// The scan runs as a Task on its own goroutine. A Task produces exactly one
// outcome: the complete index or an error. A panic inside the scan is
// reported as a worker exit, never as a partial index.
package preload
