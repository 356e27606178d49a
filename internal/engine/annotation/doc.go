// Package annotation stores out-of-band annotations on a document.
//
// An annotation maps a document.Selection (the range descriptor) to a
// Payload. The map lives in the document-level metadata of a
// document.Content under MetaKey, so it survives block splits and merges
// and every store operation leaves block text untouched.
//
// Payload is a closed sum type: Comment, Suggestion and Highlight are the
// known kinds and Opaque carries any other kind as raw bytes so documents
// written by newer versions still round-trip.
//
//	c = annotation.Merge(c, sel, annotation.Comment{Author: "ana", Msg: "typo"})
//	for _, e := range annotation.Entries(annotation.Get(c)) {
//	    fmt.Println(e.Selection, e.Payload.Kind())
//	}
package annotation
