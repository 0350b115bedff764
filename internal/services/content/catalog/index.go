package catalog

// Index is an insertion-ordered mapping from document id to document.
//
// Putting an id that already exists replaces the document but keeps the
// original position, so iteration order reflects first appearance.
// An Index is not safe for concurrent mutation; it is built by one goroutine
// and then handed to a Store.
type Index struct {
	order []string
	docs  map[string]Document
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{docs: make(map[string]Document)}
}

// Put stores doc under doc.ID and reports whether an earlier document with
// the same id was overwritten.
func (i *Index) Put(doc Document) bool {
	if i.docs == nil {
		i.docs = make(map[string]Document)
	}
	_, replaced := i.docs[doc.ID]
	if !replaced {
		i.order = append(i.order, doc.ID)
	}
	i.docs[doc.ID] = doc
	return replaced
}

// Get returns the document for id.
func (i *Index) Get(id string) (Document, bool) {
	if i == nil {
		return Document{}, false
	}
	doc, ok := i.docs[id]
	return doc, ok
}

// Documents returns every document in insertion order.
func (i *Index) Documents() []Document {
	if i == nil {
		return nil
	}
	docs := make([]Document, 0, len(i.order))
	for _, id := range i.order {
		docs = append(docs, i.docs[id])
	}
	return docs
}

// IDs returns every id in insertion order.
func (i *Index) IDs() []string {
	if i == nil {
		return nil
	}
	return append([]string(nil), i.order...)
}

// Len returns the number of distinct ids.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.order)
}

func (i *Index) clone() *Index {
	out := &Index{
		order: append([]string(nil), i.order...),
		docs:  make(map[string]Document, len(i.docs)),
	}
	for id, doc := range i.docs {
		out.docs[id] = doc
	}
	return out
}
