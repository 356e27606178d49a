// Package docfile reads and writes rich text documents.
//
// A document file holds the block list of a document.Content, its
// selection and its annotations. Inline styles and entities are stored as
// ranges over each block's characters, not per character:
//
//	{
//	  "blocks": [
//	    {"key": "a", "type": "unstyled", "text": "hello world",
//	     "inlineStyleRanges": [{"offset": 0, "length": 5, "style": "BOLD"}]}
//	  ],
//	  "annotations": [
//	    {"selection": {"anchorKey": "a", "anchorOffset": 6, ...},
//	     "kind": "comment", "data": {...}}
//	  ]
//	}
//
// The format is chosen from the file extension: .json, .yaml, .yml or
// .txt. Plain text files hold one block per line and no annotations.
package docfile
