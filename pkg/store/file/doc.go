// Package file stores accounts in a JSON document on local disk.
//
// The document is a top-level array indented by two spaces:
//
//	[
//	  {
//	    "name": "github",
//	    "password": "s3cret"
//	  }
//	]
//
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so readers see either the old or the new document.
// Update and DeleteByName hold an advisory lock on "<path>.lock" for the
// whole read-modify-write.
package file
